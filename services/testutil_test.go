package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-ops-backend/config"
	"hotel-ops-backend/models"
)

// newTestDB opens an isolated in-memory SQLite database. A single pooled
// connection keeps the in-memory database alive and serializes access the
// way the per-room mutex expects.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, slug string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{Slug: slug, Name: "Hotel " + slug, Active: true}
	require.NoError(t, db.Create(&tenant).Error)
	return tenant
}

func seedRoom(t *testing.T, db *gorm.DB, tenantID uint, number string, rate int64) models.Room {
	t.Helper()
	room := models.Room{
		TenantID:     tenantID,
		Number:       number,
		Name:         "Room " + number,
		Type:         "Standard",
		RatePerNight: decimal.NewFromInt(rate),
		MaxOccupancy: 4,
		Status:       models.RoomStatusAvailable,
	}
	require.NoError(t, db.Create(&room).Error)
	return room
}

// assertDecimal compares decimals by value, not representation.
func assertDecimal(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	require.Truef(t, actual.Equal(decimal.NewFromInt(expected)),
		"expected %d, got %s", expected, actual.String())
}
