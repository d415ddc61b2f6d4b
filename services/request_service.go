package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hotel-ops-backend/models"
	"hotel-ops-backend/utils"
)

// Events published to a tenant's live channel.
const (
	EventNewRequest     = "newRequest"
	EventRequestUpdated = "requestUpdated"
)

// Publisher fans an event out to every staff session joined to the tenant's
// live channel. Delivery is best-effort; implementations never return errors
// and must not block on slow subscribers.
type Publisher interface {
	Broadcast(tenantID uint, event string, payload interface{})
}

// RequestService accepts guest-submitted service requests, persists them and
// publishes them to the tenant's live channel. Persist first, publish after:
// a fan-out failure can never roll back the record.
type RequestService struct {
	DB      *gorm.DB
	Tenants *TenantService
	Pub     Publisher
}

func NewRequestService(db *gorm.DB, tenants *TenantService, pub Publisher) *RequestService {
	return &RequestService{DB: db, Tenants: tenants, Pub: pub}
}

// OrderItem is one line of an order-type request payload.
type OrderItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type SubmitRequestInput struct {
	RoomID       uint   `json:"roomId" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Message      string `json:"message"`
	GuestContact string `json:"guestContact"`
	Priority     string `json:"priority"`

	// Type-specific detail.
	Items    []OrderItem `json:"items,omitempty"`
	Category string      `json:"category,omitempty"`
}

// Submit validates the payload against the request type, persists the request
// as pending and publishes it as a newRequest event.
func (s *RequestService) Submit(tenantID uint, in SubmitRequestInput) (*models.ServiceRequest, error) {
	in.Type = strings.TrimSpace(in.Type)
	if !models.KnownRequestType(in.Type) {
		return nil, invalid("unknown request type %q", in.Type)
	}

	tenant, err := s.Tenants.Get(tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.ServiceEnabled(in.Type) {
		return nil, ErrServiceDisabled
	}

	var room models.Room
	if err := s.DB.Where("tenant_id = ?", tenantID).First(&room, in.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, dependency("load room", err)
	}

	req := models.ServiceRequest{
		TenantID:      tenantID,
		RoomID:        room.ID,
		RoomNumber:    room.Number,
		ReferenceCode: utils.NewReferenceCode("REQ"),
		Type:          in.Type,
		Message:       strings.TrimSpace(in.Message),
		GuestContact:  strings.TrimSpace(in.GuestContact),
		Status:        models.RequestStatusPending,
		Priority:      normalizePriority(in.Priority),
	}

	if err := buildTypedPayload(&req, in); err != nil {
		return nil, err
	}

	if err := s.DB.Create(&req).Error; err != nil {
		return nil, dependency("create service request", err)
	}

	s.publish(tenantID, EventNewRequest, req)
	return &req, nil
}

// UpdateStatus moves a request to a new status. Any transition is allowed;
// pending → in_progress → completed is the expected path, canceled a side
// exit. Requests owned by other tenants read as not found.
func (s *RequestService) UpdateStatus(tenantID, requestID uint, status string) (*models.ServiceRequest, error) {
	status = strings.TrimSpace(status)
	if !models.KnownRequestStatus(status) {
		return nil, invalid("unknown request status %q", status)
	}

	var req models.ServiceRequest
	if err := s.DB.Where("tenant_id = ?", tenantID).First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, dependency("load service request", err)
	}

	if err := s.DB.Model(&req).Update("status", status).Error; err != nil {
		return nil, dependency("update request status", err)
	}
	req.Status = status

	s.publish(tenantID, EventRequestUpdated, req)
	return &req, nil
}

func (s *RequestService) List(tenantID uint, status, requestType string) ([]models.ServiceRequest, error) {
	q := s.DB.Where("tenant_id = ?", tenantID).Order("created_at DESC")
	if status != "" {
		if !models.KnownRequestStatus(status) {
			return nil, invalid("unknown request status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	if requestType != "" {
		if !models.KnownRequestType(requestType) {
			return nil, invalid("unknown request type %q", requestType)
		}
		q = q.Where("type = ?", requestType)
	}
	var requests []models.ServiceRequest
	if err := q.Find(&requests).Error; err != nil {
		return nil, dependency("list service requests", err)
	}
	return requests, nil
}

// publish fans the record out after the write committed. Failures are logged
// and swallowed: the persisted list is the source of truth on refresh.
func (s *RequestService) publish(tenantID uint, event string, payload interface{}) {
	if s.Pub == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("live publish %s for tenant %d failed: %v", event, tenantID, r)
		}
	}()
	s.Pub.Broadcast(tenantID, event, payload)
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case models.PriorityLow:
		return models.PriorityLow
	case models.PriorityHigh:
		return models.PriorityHigh
	default:
		return models.PriorityMedium
	}
}

// buildTypedPayload validates the type-specific detail and fills in the
// payload column, the derived message and, for orders, the total.
func buildTypedPayload(req *models.ServiceRequest, in SubmitRequestInput) error {
	switch req.Type {
	case models.RequestTypeOrderFood:
		return buildOrderPayload(req, in.Items, true)

	case models.RequestTypeRoomService:
		// Room service may carry an item list (minibar refills etc.) but a
		// plain message is enough.
		if len(in.Items) > 0 {
			return buildOrderPayload(req, in.Items, false)
		}
		if req.Message == "" {
			return invalid("room service request needs a message or an item list")
		}
		return nil

	case models.RequestTypeComplaint:
		category := strings.TrimSpace(in.Category)
		if category == "" {
			return invalid("complaint requires a category")
		}
		if req.Message == "" {
			return invalid("complaint requires a message")
		}
		raw, err := json.Marshal(map[string]string{"category": category})
		if err != nil {
			return dependency("encode complaint payload", err)
		}
		req.Payload = datatypes.JSON(raw)
		return nil

	case models.RequestTypeSecurityAlert:
		// Alerts always page staff at the highest priority.
		req.Priority = models.PriorityHigh
		if req.Message == "" {
			req.Message = "Security alert"
		}
		return nil

	default: // call_service, custom_message, wifi_support
		if req.Message == "" {
			return invalid("%s request requires a message", req.Type)
		}
		return nil
	}
}

func buildOrderPayload(req *models.ServiceRequest, items []OrderItem, required bool) error {
	if len(items) == 0 {
		if required {
			return invalid("order requires at least one item")
		}
		return nil
	}

	total := decimal.Zero
	lines := make([]map[string]interface{}, 0, len(items))
	summary := make([]string, 0, len(items))

	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return invalid("order item name is required")
		}
		if item.Quantity <= 0 {
			return invalid("order item %q needs a positive quantity", name)
		}
		if item.Price.IsNegative() {
			return invalid("order item %q price cannot be negative", name)
		}

		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)

		lines = append(lines, map[string]interface{}{
			"name":      name,
			"price":     item.Price,
			"quantity":  item.Quantity,
			"lineTotal": lineTotal,
		})
		summary = append(summary, fmt.Sprintf("%d× %s", item.Quantity, name))
	}

	raw, err := json.Marshal(map[string]interface{}{
		"items":       lines,
		"totalAmount": total,
	})
	if err != nil {
		return dependency("encode order payload", err)
	}

	req.Payload = datatypes.JSON(raw)
	req.TotalAmount = total
	if req.Message == "" {
		req.Message = "Order: " + strings.Join(summary, ", ")
	}
	return nil
}
