package models

import (
	"gorm.io/gorm"
)

// StaffUser is a desk login record. Token issuance and verification live in
// the upstream auth service; the core only stores the account so onboarding
// can seed one per tenant.
type StaffUser struct {
	gorm.Model

	TenantID uint   `json:"tenantId" gorm:"column:tenant_id;index"`
	FullName string `json:"fullName" gorm:"size:255"`
	Username string `json:"username" gorm:"uniqueIndex;size:150"`
	Password string `json:"-" gorm:"size:255"`
	Role     string `json:"role" gorm:"size:64;default:receptionist"`
}
