package models

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tenant is one hotel account and the unit of data isolation.
// Tenants are never hard-deleted; Active=false disables them.
type Tenant struct {
	gorm.Model

	Slug   string `json:"slug" gorm:"column:slug;uniqueIndex;type:varchar(64)"`
	Name   string `json:"name" gorm:"size:255"`
	Active bool   `json:"active" gorm:"default:true"`

	// ServiceToggles maps a service-request type to enabled/disabled.
	// A type missing from the map counts as enabled.
	ServiceToggles datatypes.JSON `json:"serviceToggles" gorm:"column:service_toggles"`

	// NotificationPrefs holds {"sound": bool, "email": bool}.
	NotificationPrefs datatypes.JSON `json:"notificationPrefs" gorm:"column:notification_prefs"`
}

// ServiceEnabled reports whether the given request type is enabled for the
// tenant. Unparseable or absent toggle data counts as enabled.
func (t Tenant) ServiceEnabled(requestType string) bool {
	if len(t.ServiceToggles) == 0 {
		return true
	}
	var toggles map[string]bool
	if err := json.Unmarshal(t.ServiceToggles, &toggles); err != nil {
		return true
	}
	enabled, ok := toggles[strings.TrimSpace(requestType)]
	if !ok {
		return true
	}
	return enabled
}
