// Package realtime maintains the per-tenant live channels used to push
// service-request events to connected staff sessions.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Event is the envelope every live message travels in.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// conn wraps one staff WebSocket connection together with its tenant group.
type conn struct {
	ws       *websocket.Conn
	tenantID uint
	cancel   context.CancelFunc
}

// Hub holds the tenant → connections mapping. It is created once at process
// start and injected wherever broadcasts originate; there is no package-level
// state.
type Hub struct {
	mu     sync.RWMutex
	groups map[uint]map[*conn]struct{}
}

func NewHub() *Hub {
	return &Hub{groups: make(map[uint]map[*conn]struct{})}
}

const writeTimeout = 5 * time.Second

// Join upgrades the request to a WebSocket and adds the connection to the
// tenant's group. Authorization happened upstream; the tenant id is trusted.
func (h *Hub) Join(w http.ResponseWriter, r *http.Request, tenantID uint) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by router middleware
	})
	if err != nil {
		log.Printf("websocket accept failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{ws: ws, tenantID: tenantID, cancel: cancel}

	h.mu.Lock()
	group, ok := h.groups[tenantID]
	if !ok {
		group = make(map[*conn]struct{})
		h.groups[tenantID] = group
	}
	group[c] = struct{}{}
	h.mu.Unlock()

	log.Printf("live channel joined: tenant=%d remote=%s", tenantID, r.RemoteAddr)

	// Read loop: staff clients never send payloads, but reading is how we
	// notice pings and disconnects.
	go func() {
		defer func() {
			h.Leave(c)
			_ = ws.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}()
}

// Broadcast delivers the event to every connection joined to the tenant's
// group. Fire-and-forget: no acknowledgment, no retry, no buffering of missed
// events. Zero subscribers is a no-op.
func (h *Hub) Broadcast(tenantID uint, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		log.Printf("live broadcast marshal failed: %v", err)
		return
	}

	h.mu.RLock()
	conns := make([]*conn, 0, len(h.groups[tenantID]))
	for c := range h.groups[tenantID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.ws.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			// Dead connection; drop it from the group.
			h.Leave(c)
		}
	}
}

// Leave removes a connection from its tenant group and cancels its read loop.
func (h *Hub) Leave(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[c.tenantID]
	if !ok {
		return
	}
	if _, joined := group[c]; joined {
		c.cancel()
		delete(group, c)
		if len(group) == 0 {
			delete(h.groups, c.tenantID)
		}
		log.Printf("live channel left: tenant=%d", c.tenantID)
	}
}

// ConnectionCount returns the number of live connections for a tenant.
func (h *Hub) ConnectionCount(tenantID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[tenantID])
}

// Close shuts every connection down; called once on process shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for tenantID, group := range h.groups {
		for c := range group {
			c.cancel()
			_ = c.ws.Close(websocket.StatusGoingAway, "server shutting down")
		}
		delete(h.groups, tenantID)
	}
}
