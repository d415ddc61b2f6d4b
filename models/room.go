package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room statuses. "occupied" is only ever set by the occupancy service as part
// of a check-in; the other three can be toggled directly by staff.
const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
	RoomStatusOutOfOrder  = "out_of_order"
)

type Room struct {
	gorm.Model

	TenantID uint `json:"tenantId" gorm:"column:tenant_id;index;uniqueIndex:idx_tenant_room_number"`

	Number string `json:"number" gorm:"column:number;uniqueIndex:idx_tenant_room_number;type:varchar(50)"`
	Name   string `json:"name" gorm:"size:255"`
	Type   string `json:"type" gorm:"size:64"`

	RatePerNight decimal.Decimal `json:"ratePerNight" gorm:"column:rate_per_night;type:decimal(10,2)"`
	MaxOccupancy int             `json:"maxOccupancy" gorm:"column:max_occupancy"`

	Amenities datatypes.JSON `json:"amenities"`

	Status string `json:"status" gorm:"size:32;default:available"`

	// ActiveStayID is set iff Status == occupied.
	ActiveStayID *uint `json:"activeStayId,omitempty" gorm:"column:active_stay_id"`
	ActiveStay   *Stay `json:"activeStay,omitempty" gorm:"foreignKey:ActiveStayID"`
}
