package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StayStatusCheckedIn  = "checked_in"
	StayStatusCheckedOut = "checked_out"
)

// Stay is one guest's check-in-to-check-out billing record for a room.
// Stays are never deleted: a checked-out stay stays around as the audit trail.
type Stay struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TenantID uint `json:"tenantId" gorm:"column:tenant_id;index"`
	RoomID   uint `json:"roomId" gorm:"column:room_id;index"`
	Room     Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`

	ReferenceCode string `json:"referenceCode" gorm:"column:reference_code;uniqueIndex;size:64"`

	GuestName    string `json:"guestName" gorm:"column:guest_name;size:255"`
	GuestEmail   string `json:"guestEmail" gorm:"column:guest_email;size:150"`
	GuestPhone   string `json:"guestPhone" gorm:"column:guest_phone;size:50"`
	IDType       string `json:"idType" gorm:"column:id_type;size:50"`
	IDNumber     string `json:"idNumber" gorm:"column:id_number;size:100"`
	GuestAddress string `json:"guestAddress" gorm:"column:guest_address;type:text"`

	CheckInDate  time.Time `json:"checkInDate" gorm:"column:check_in_date"`
	CheckOutDate time.Time `json:"checkOutDate" gorm:"column:check_out_date"`

	Adults   int `json:"adults" gorm:"default:1"`
	Children int `json:"children" gorm:"default:0"`

	// RatePerNight is snapshotted from the room at check-in so later rate
	// edits never change an active stay's bill.
	RatePerNight      decimal.Decimal `json:"ratePerNight" gorm:"column:rate_per_night;type:decimal(10,2)"`
	TotalNights       int             `json:"totalNights" gorm:"column:total_nights"`
	TotalAmount       decimal.Decimal `json:"totalAmount" gorm:"column:total_amount;type:decimal(10,2)"`
	AdvancePayment    decimal.Decimal `json:"advancePayment" gorm:"column:advance_payment;type:decimal(10,2)"`
	PaidAmount        decimal.Decimal `json:"paidAmount" gorm:"column:paid_amount;type:decimal(10,2)"`
	PendingAmount     decimal.Decimal `json:"pendingAmount" gorm:"column:pending_amount;type:decimal(10,2)"`
	AdditionalCharges decimal.Decimal `json:"additionalCharges" gorm:"column:additional_charges;type:decimal(10,2)"`

	Status         string     `json:"status" gorm:"size:32;default:checked_in"`
	ActualCheckout *time.Time `json:"actualCheckout,omitempty" gorm:"column:actual_checkout"`
}
