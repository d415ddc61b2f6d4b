package config

import (
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-ops-backend/models"
	"hotel-ops-backend/utils"
)

var DB *gorm.DB

// ConnectDatabase opens the MySQL connection, runs migrations and seeds the
// demo tenant. Sets config.DB on success.
func ConnectDatabase(cfg *Config) error {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		log.Printf("info: cannot get raw sql.DB: %v", err)
	}

	DB = db

	if err := Migrate(DB); err != nil {
		return err
	}

	SeedDatabase(DB)
	return nil
}

// Migrate runs AutoMigrate in parent-before-child order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.StaffUser{},
		&models.Room{},
		&models.Stay{},
		&models.ServiceRequest{},
	)
}

// SeedDatabase creates a demo tenant with a desk login so a fresh install is
// usable immediately. Idempotent: existing rows are left alone.
func SeedDatabase(db *gorm.DB) {
	var tenantCount int64
	db.Model(&models.Tenant{}).Count(&tenantCount)
	if tenantCount > 0 {
		log.Println("Tenants already seeded")
		return
	}

	tenant := models.Tenant{
		Slug:   "demo",
		Name:   "Demo Hotel",
		Active: true,
	}
	if err := db.Create(&tenant).Error; err != nil {
		log.Printf("warning: failed to seed demo tenant: %v", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(utils.EnvOrDefault("SEED_STAFF_PASSWORD", "desk123")), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("warning: failed to hash seed staff password: %v", err)
	} else {
		staff := models.StaffUser{
			TenantID: tenant.ID,
			FullName: "Front Desk",
			Username: "desk@demo.local",
			Password: string(hash),
			Role:     "owner",
		}
		if err := db.Create(&staff).Error; err != nil {
			log.Printf("warning: failed to seed staff user: %v", err)
		}
	}

	rooms := []models.Room{
		{TenantID: tenant.ID, Number: "101", Name: "Standard 101", Type: "Standard", MaxOccupancy: 2, Status: models.RoomStatusAvailable},
		{TenantID: tenant.ID, Number: "102", Name: "Standard 102", Type: "Standard", MaxOccupancy: 2, Status: models.RoomStatusAvailable},
		{TenantID: tenant.ID, Number: "201", Name: "Deluxe 201", Type: "Deluxe", MaxOccupancy: 4, Status: models.RoomStatusAvailable},
	}
	if err := db.Create(&rooms).Error; err != nil {
		log.Printf("warning: failed to seed rooms: %v", err)
	}

	log.Println("Demo tenant seeded")
}
