package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service-request types a guest can submit.
const (
	RequestTypeCallService   = "call_service"
	RequestTypeOrderFood     = "order_food"
	RequestTypeRoomService   = "room_service"
	RequestTypeComplaint     = "complaint"
	RequestTypeCustomMessage = "custom_message"
	RequestTypeWifiSupport   = "wifi_support"
	RequestTypeSecurityAlert = "security_alert"
)

const (
	RequestStatusPending    = "pending"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusCanceled   = "canceled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ServiceRequest is a guest-originated action item routed to staff.
// Never deleted; the full history is kept per tenant.
type ServiceRequest struct {
	gorm.Model

	TenantID uint `json:"tenantId" gorm:"column:tenant_id;index"`
	RoomID   uint `json:"roomId" gorm:"column:room_id;index"`

	// RoomNumber is denormalized for display so staff clients never need a
	// second lookup when a request arrives over the live channel.
	RoomNumber string `json:"roomNumber" gorm:"column:room_number;size:50"`

	ReferenceCode string `json:"referenceCode" gorm:"column:reference_code;uniqueIndex;size:64"`

	Type         string `json:"type" gorm:"size:32;index"`
	Message      string `json:"message" gorm:"type:text"`
	GuestContact string `json:"guestContact" gorm:"column:guest_contact;size:100"`

	Status   string `json:"status" gorm:"size:32;default:pending;index"`
	Priority string `json:"priority" gorm:"size:16;default:medium"`

	// Payload carries the type-specific detail: order line items, complaint
	// category, alert metadata. Null for plain-text requests.
	Payload datatypes.JSON `json:"payload,omitempty"`

	// TotalAmount is derived for order-type requests (sum of line totals).
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"column:total_amount;type:decimal(10,2)"`
}

// KnownRequestType reports whether t is one of the enumerated request types.
func KnownRequestType(t string) bool {
	switch t {
	case RequestTypeCallService, RequestTypeOrderFood, RequestTypeRoomService,
		RequestTypeComplaint, RequestTypeCustomMessage, RequestTypeWifiSupport,
		RequestTypeSecurityAlert:
		return true
	}
	return false
}

// KnownRequestStatus reports whether s is a valid request status.
func KnownRequestStatus(s string) bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusCompleted, RequestStatusCanceled:
		return true
	}
	return false
}
