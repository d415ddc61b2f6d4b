package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hotel-ops-backend/models"
)

// TenantService is the tenant directory: config lookups for every scoped
// operation, cached in-process since toggles change rarely and are read on
// every guest submission.
type TenantService struct {
	DB    *gorm.DB
	cache *cache.Cache
}

func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{
		DB:    db,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func tenantCacheKey(id uint) string { return fmt.Sprintf("tenant:%d", id) }

// Get returns the tenant by id, from cache when fresh.
func (s *TenantService) Get(id uint) (*models.Tenant, error) {
	if cached, found := s.cache.Get(tenantCacheKey(id)); found {
		t := cached.(models.Tenant)
		return &t, nil
	}

	var tenant models.Tenant
	if err := s.DB.First(&tenant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, dependency("load tenant", err)
	}

	s.cache.Set(tenantCacheKey(id), tenant, cache.DefaultExpiration)
	return &tenant, nil
}

// GetBySlug resolves a tenant by its slug (uncached; only used at the edge).
func (s *TenantService) GetBySlug(slug string) (*models.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrTenantNotFound
	}
	var tenant models.Tenant
	if err := s.DB.Where("slug = ?", slug).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, dependency("load tenant", err)
	}
	return &tenant, nil
}

type TenantInput struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// Create onboards a tenant. Slugs are lowercased and unique.
func (s *TenantService) Create(in TenantInput) (*models.Tenant, error) {
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Name = strings.TrimSpace(in.Name)
	if in.Slug == "" || in.Name == "" {
		return nil, invalid("tenant slug and name are required")
	}

	tenant := models.Tenant{Slug: in.Slug, Name: in.Name, Active: true}
	if err := s.DB.Create(&tenant).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, fmt.Errorf("%w: tenant slug already exists", ErrConflict)
		}
		return nil, dependency("create tenant", err)
	}
	return &tenant, nil
}

type TenantSettingsInput struct {
	ServiceToggles    map[string]bool `json:"serviceToggles"`
	NotificationPrefs map[string]bool `json:"notificationPrefs"`
}

// UpdateSettings replaces the tenant's toggles/prefs and invalidates the
// cached entry so the next lookup sees them.
func (s *TenantService) UpdateSettings(id uint, in TenantSettingsInput) (*models.Tenant, error) {
	updates := map[string]interface{}{}

	if in.ServiceToggles != nil {
		for key := range in.ServiceToggles {
			if !models.KnownRequestType(key) {
				return nil, invalid("unknown service toggle %q", key)
			}
		}
		raw, err := json.Marshal(in.ServiceToggles)
		if err != nil {
			return nil, dependency("encode service toggles", err)
		}
		updates["service_toggles"] = datatypes.JSON(raw)
	}
	if in.NotificationPrefs != nil {
		raw, err := json.Marshal(in.NotificationPrefs)
		if err != nil {
			return nil, dependency("encode notification prefs", err)
		}
		updates["notification_prefs"] = datatypes.JSON(raw)
	}
	if len(updates) == 0 {
		return nil, invalid("no settings in payload")
	}

	result := s.DB.Model(&models.Tenant{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, dependency("update tenant settings", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrTenantNotFound
	}

	s.cache.Delete(tenantCacheKey(id))
	return s.Get(id)
}

// Deactivate soft-disables a tenant. Tenants are never deleted.
func (s *TenantService) Deactivate(id uint) error {
	result := s.DB.Model(&models.Tenant{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return dependency("deactivate tenant", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTenantNotFound
	}
	s.cache.Delete(tenantCacheKey(id))
	return nil
}
