package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"hotel-ops-backend/controllers"
	"hotel-ops-backend/middleware"
	"hotel-ops-backend/realtime"
	"hotel-ops-backend/services"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires controllers, the tenant scope middleware and the live
// channel into one engine.
func SetupRouter(
	tc *controllers.TenantController,
	rc *controllers.RoomController,
	sc *controllers.StayController,
	qc *controllers.RequestController,
	tenants *services.TenantService,
	hub *realtime.Hub,
	guestRate rate.Limit,
	guestBurst int,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Tenant-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Onboarding has no tenant scope yet.
	api.POST("/tenants", tc.CreateTenant)

	scoped := api.Group("")
	scoped.Use(middleware.TenantResolver(tenants))
	{
		tenantsGroup := scoped.Group("/tenants")
		{
			tenantsGroup.GET("/me", tc.GetMe)
			tenantsGroup.PUT("/me/settings", tc.UpdateSettings)
		}

		rooms := scoped.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)
			rooms.POST("", rc.CreateRoom)
			rooms.GET("/:id", rc.GetRoom)
			rooms.PUT("/:id", rc.UpdateRoom)
			rooms.PATCH("/:id/status", rc.UpdateRoomStatus)
			rooms.DELETE("/:id", rc.DeleteRoom)
		}

		stays := scoped.Group("/stays")
		{
			stays.POST("/check-in", sc.CheckIn)
			stays.GET("", sc.GetStays)
			stays.GET("/:id", sc.GetStay)
			stays.GET("/:id/bill-preview", sc.BillPreview)
			stays.POST("/:id/check-out", sc.CheckOut)
			stays.PATCH("/:id/advance", sc.UpdateAdvance)
		}

		requests := scoped.Group("/requests")
		{
			// Submission is the guest surface; it gets a per-IP limiter.
			guestLimiter := middleware.NewIPRateLimiter(guestRate, guestBurst)
			requests.POST("", guestLimiter.Middleware(), qc.SubmitRequest)

			requests.GET("", qc.GetRequests)
			requests.PATCH("/:id/status", qc.UpdateRequestStatus)
		}

		// Staff sessions join their tenant's live channel here.
		scoped.GET("/live", func(c *gin.Context) {
			v, _ := c.Get(middleware.TenantIDKey)
			id, _ := v.(uint)
			hub.Join(c.Writer, c.Request, id)
		})
	}

	return r
}
