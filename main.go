package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"hotel-ops-backend/config"
	"hotel-ops-backend/controllers"
	"hotel-ops-backend/realtime"
	"hotel-ops-backend/routes"
	"hotel-ops-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config load failed: %v", err)
	}

	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied")

	// Live channel hub: created here, injected everywhere, closed on shutdown.
	hub := realtime.NewHub()

	// Services
	tenantService := services.NewTenantService(db)
	occupancyService := services.NewOccupancyService(db)
	requestService := services.NewRequestService(db, tenantService, hub)

	// Controllers
	tenantController := controllers.NewTenantController(tenantService)
	roomController := controllers.NewRoomController(occupancyService)
	stayController := controllers.NewStayController(occupancyService)
	requestController := controllers.NewRequestController(requestService)

	router := routes.SetupRouter(
		tenantController,
		roomController,
		stayController,
		requestController,
		tenantService,
		hub,
		rate.Limit(cfg.Server.GuestRatePerSec),
		cfg.Server.GuestBurst,
	)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
		// useful timeouts
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	hub.Close()
	log.Println("✅ Server stopped gracefully")
}
