package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-ops-backend/models"
	"hotel-ops-backend/utils"
)

// OccupancyService owns every write that touches the room↔stay pairing. The
// invariant it defends: a room is occupied iff it references exactly one
// checked-in stay.
type OccupancyService struct {
	DB *gorm.DB

	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

func NewOccupancyService(db *gorm.DB) *OccupancyService {
	return &OccupancyService{
		DB:        db,
		roomLocks: make(map[string]*sync.Mutex),
	}
}

// lockRoom serializes check-in/check-out/status writes per tenant+room within
// this process, on top of the row lock taken inside the transaction. Returns
// the unlock func.
func (s *OccupancyService) lockRoom(tenantID, roomID uint) func() {
	key := fmt.Sprintf("%d/%d", tenantID, roomID)

	s.mu.Lock()
	lock, ok := s.roomLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.roomLocks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// forUpdate takes a row lock on dialects that support SELECT ... FOR UPDATE.
// The keyed room mutex covers stores that don't (sqlite in tests).
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// ---------------------------
// Check-in / Check-out
// ---------------------------

type CheckInInput struct {
	RoomID uint

	GuestName    string
	GuestEmail   string
	GuestPhone   string
	IDType       string
	IDNumber     string
	GuestAddress string

	CheckInDate  time.Time
	CheckOutDate time.Time

	Adults   int
	Children int

	AdvancePayment decimal.Decimal
}

func (in *CheckInInput) validate() error {
	in.GuestName = strings.TrimSpace(in.GuestName)
	in.GuestPhone = strings.TrimSpace(in.GuestPhone)
	in.IDNumber = strings.TrimSpace(in.IDNumber)

	if in.GuestName == "" {
		return invalid("guest name is required")
	}
	if in.GuestPhone == "" {
		return invalid("guest phone is required")
	}
	if in.IDNumber == "" {
		return invalid("guest identification number is required")
	}
	if !in.CheckOutDate.After(in.CheckInDate) {
		return ErrInvalidDateRange
	}
	if in.Adults <= 0 {
		in.Adults = 1
	}
	if in.Children < 0 {
		in.Children = 0
	}
	if in.AdvancePayment.IsNegative() {
		return invalid("advance payment cannot be negative")
	}
	return nil
}

// CheckIn creates a checked-in stay and flips the room to occupied in one
// transaction, so the room/stay pairing can never half-apply.
func (s *OccupancyService) CheckIn(tenantID uint, in CheckInInput) (*models.Stay, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock := s.lockRoom(tenantID, in.RoomID)
	defer unlock()

	var stay models.Stay

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := forUpdate(tx).
			Where("tenant_id = ?", tenantID).
			First(&room, in.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return dependency("load room", err)
		}

		if room.Status != models.RoomStatusAvailable {
			return ErrRoomNotAvailable
		}
		if room.MaxOccupancy > 0 && in.Adults+in.Children > room.MaxOccupancy {
			return invalid("room %s sleeps at most %d guests", room.Number, room.MaxOccupancy)
		}

		nights := StayNights(in.CheckInDate, in.CheckOutDate)
		total, paid, pending := NewStayBill(nights, room.RatePerNight, in.AdvancePayment)
		if in.AdvancePayment.GreaterThan(total) {
			return invalid("advance payment exceeds the stay total")
		}

		stay = models.Stay{
			TenantID:       tenantID,
			RoomID:         room.ID,
			ReferenceCode:  utils.NewReferenceCode("STY"),
			GuestName:      in.GuestName,
			GuestEmail:     strings.TrimSpace(in.GuestEmail),
			GuestPhone:     in.GuestPhone,
			IDType:         strings.TrimSpace(in.IDType),
			IDNumber:       in.IDNumber,
			GuestAddress:   strings.TrimSpace(in.GuestAddress),
			CheckInDate:    in.CheckInDate,
			CheckOutDate:   in.CheckOutDate,
			Adults:         in.Adults,
			Children:       in.Children,
			RatePerNight:   room.RatePerNight,
			TotalNights:    nights,
			TotalAmount:    total,
			AdvancePayment: in.AdvancePayment,
			PaidAmount:     paid,
			PendingAmount:  pending,
			Status:         models.StayStatusCheckedIn,
		}

		if err := tx.Create(&stay).Error; err != nil {
			return dependency("create stay", err)
		}

		if err := tx.Model(&models.Room{}).
			Where("id = ? AND tenant_id = ?", room.ID, tenantID).
			Updates(map[string]interface{}{
				"status":         models.RoomStatusOccupied,
				"active_stay_id": stay.ID,
			}).Error; err != nil {
			// Roll the stay back with the transaction; the room must never
			// stay available with a checked-in stay pointing at it.
			return dependency("mark room occupied", err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &stay, nil
}

// CheckOut closes the stay and frees the room in one transaction. A non-zero
// outstanding balance is recorded, not rejected: the desk follows it up.
func (s *OccupancyService) CheckOut(tenantID, stayID uint, additionalCharges, finalPayment decimal.Decimal) (*models.Stay, error) {
	if additionalCharges.IsNegative() {
		return nil, invalid("additional charges cannot be negative")
	}
	if finalPayment.IsNegative() {
		return nil, invalid("final payment cannot be negative")
	}

	var stay models.Stay

	// Resolve the room first so we can take the keyed lock before the
	// transaction begins.
	if err := s.DB.Where("tenant_id = ?", tenantID).First(&stay, stayID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStayNotFound
		}
		return nil, dependency("load stay", err)
	}

	unlock := s.lockRoom(tenantID, stay.RoomID)
	defer unlock()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).
			Where("tenant_id = ?", tenantID).
			First(&stay, stayID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStayNotFound
			}
			return dependency("load stay", err)
		}

		if stay.Status != models.StayStatusCheckedIn {
			return ErrStayAlreadyClosed
		}

		_, totalPaid, finalPending := CheckoutBill(stay, additionalCharges, finalPayment)
		now := time.Now().UTC()

		if err := tx.Model(&stay).Updates(map[string]interface{}{
			"additional_charges": additionalCharges,
			"paid_amount":        totalPaid,
			"pending_amount":     finalPending,
			"status":             models.StayStatusCheckedOut,
			"actual_checkout":    now,
		}).Error; err != nil {
			return dependency("close stay", err)
		}

		stay.AdditionalCharges = additionalCharges
		stay.PaidAmount = totalPaid
		stay.PendingAmount = finalPending
		stay.Status = models.StayStatusCheckedOut
		stay.ActualCheckout = &now

		if err := tx.Model(&models.Room{}).
			Where("id = ? AND tenant_id = ?", stay.RoomID, tenantID).
			Updates(map[string]interface{}{
				"status":         models.RoomStatusAvailable,
				"active_stay_id": nil,
			}).Error; err != nil {
			return dependency("free room", err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &stay, nil
}

// BillPreview returns the projected checkout figures without mutating state.
func (s *OccupancyService) BillPreview(tenantID, stayID uint, additionalCharges decimal.Decimal) (Bill, error) {
	if additionalCharges.IsNegative() {
		return Bill{}, invalid("additional charges cannot be negative")
	}
	stay, err := s.GetStay(tenantID, stayID)
	if err != nil {
		return Bill{}, err
	}
	return PreviewBill(*stay, additionalCharges), nil
}

// UpdateAdvance corrects an active stay's advance payment and recomputes the
// paid/pending figures. The stay total never changes here.
func (s *OccupancyService) UpdateAdvance(tenantID, stayID uint, newAdvance decimal.Decimal) (*models.Stay, error) {
	var stay models.Stay

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).
			Where("tenant_id = ?", tenantID).
			First(&stay, stayID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStayNotFound
			}
			return dependency("load stay", err)
		}
		if stay.Status != models.StayStatusCheckedIn {
			return ErrStayAlreadyClosed
		}

		paid, pending, err := RecomputeAdvance(stay, newAdvance)
		if err != nil {
			return err
		}

		if err := tx.Model(&stay).Updates(map[string]interface{}{
			"advance_payment": newAdvance,
			"paid_amount":     paid,
			"pending_amount":  pending,
		}).Error; err != nil {
			return dependency("update advance", err)
		}

		stay.AdvancePayment = newAdvance
		stay.PaidAmount = paid
		stay.PendingAmount = pending
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &stay, nil
}

// ---------------------------
// Room registry
// ---------------------------

type RoomInput struct {
	Number       string          `json:"number" binding:"required"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	RatePerNight decimal.Decimal `json:"ratePerNight"`
	MaxOccupancy int             `json:"maxOccupancy"`
	Amenities    []string        `json:"amenities"`
}

func (s *OccupancyService) CreateRoom(tenantID uint, in RoomInput) (*models.Room, error) {
	in.Number = strings.TrimSpace(in.Number)
	if in.Number == "" {
		return nil, invalid("room number is required")
	}
	if in.RatePerNight.IsNegative() {
		return nil, invalid("rate per night cannot be negative")
	}

	room := models.Room{
		TenantID:     tenantID,
		Number:       in.Number,
		Name:         strings.TrimSpace(in.Name),
		Type:         strings.TrimSpace(in.Type),
		RatePerNight: in.RatePerNight,
		MaxOccupancy: in.MaxOccupancy,
		Status:       models.RoomStatusAvailable,
	}
	if len(in.Amenities) > 0 {
		room.Amenities = utils.MustJSON(in.Amenities)
	}

	if err := s.DB.Create(&room).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, ErrRoomNumberTaken
		}
		return nil, dependency("create room", err)
	}
	return &room, nil
}

func (s *OccupancyService) ListRooms(tenantID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.
		Where("tenant_id = ?", tenantID).
		Preload("ActiveStay").
		Order("number ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, dependency("list rooms", err)
	}
	return rooms, nil
}

func (s *OccupancyService) GetRoom(tenantID, roomID uint) (*models.Room, error) {
	var room models.Room
	err := s.DB.
		Where("tenant_id = ?", tenantID).
		Preload("ActiveStay").
		First(&room, roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, dependency("load room", err)
	}
	return &room, nil
}

// UpdateRoom edits room attributes. Status and the active-stay reference are
// coordinator-owned and stripped from the update set.
func (s *OccupancyService) UpdateRoom(tenantID, roomID uint, updates map[string]interface{}) (*models.Room, error) {
	for _, protected := range []string{"id", "tenant_id", "status", "active_stay_id", "created_at", "updated_at", "deleted_at"} {
		delete(updates, protected)
	}
	if len(updates) == 0 {
		return nil, invalid("no editable fields in payload")
	}

	result := s.DB.Model(&models.Room{}).
		Where("id = ? AND tenant_id = ?", roomID, tenantID).
		Updates(updates)
	if result.Error != nil {
		if isDuplicateErr(result.Error) {
			return nil, ErrRoomNumberTaken
		}
		return nil, dependency("update room", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRoomNotFound
	}
	return s.GetRoom(tenantID, roomID)
}

// SetRoomStatus is the direct staff transition between available,
// maintenance and out_of_order. Occupied rooms refuse: only a check-out can
// free them.
func (s *OccupancyService) SetRoomStatus(tenantID, roomID uint, status string) (*models.Room, error) {
	switch status {
	case models.RoomStatusAvailable, models.RoomStatusMaintenance, models.RoomStatusOutOfOrder:
	case models.RoomStatusOccupied:
		return nil, invalid("rooms become occupied only through check-in")
	default:
		return nil, invalid("unknown room status %q", status)
	}

	unlock := s.lockRoom(tenantID, roomID)
	defer unlock()

	var room models.Room

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).
			Where("tenant_id = ?", tenantID).
			First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return dependency("load room", err)
		}
		if room.Status == models.RoomStatusOccupied {
			return ErrRoomOccupied
		}
		if err := tx.Model(&room).Update("status", status).Error; err != nil {
			return dependency("update room status", err)
		}
		room.Status = status
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &room, nil
}

// DeleteRoom soft-deletes a room. Occupied rooms refuse.
func (s *OccupancyService) DeleteRoom(tenantID, roomID uint) error {
	unlock := s.lockRoom(tenantID, roomID)
	defer unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := forUpdate(tx).
			Where("tenant_id = ?", tenantID).
			First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return dependency("load room", err)
		}
		if room.Status == models.RoomStatusOccupied {
			return ErrRoomOccupied
		}
		if err := tx.Delete(&room).Error; err != nil {
			return dependency("delete room", err)
		}
		return nil
	})
}

// ---------------------------
// Stay reads
// ---------------------------

func (s *OccupancyService) ListStays(tenantID uint, status string) ([]models.Stay, error) {
	q := s.DB.Where("tenant_id = ?", tenantID).Preload("Room").Order("created_at DESC")
	if status != "" {
		if status != models.StayStatusCheckedIn && status != models.StayStatusCheckedOut {
			return nil, invalid("unknown stay status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	var stays []models.Stay
	if err := q.Find(&stays).Error; err != nil {
		return nil, dependency("list stays", err)
	}
	return stays, nil
}

func (s *OccupancyService) GetStay(tenantID, stayID uint) (*models.Stay, error) {
	var stay models.Stay
	err := s.DB.
		Where("tenant_id = ?", tenantID).
		Preload("Room").
		First(&stay, stayID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStayNotFound
		}
		return nil, dependency("load stay", err)
	}
	return &stay, nil
}

func (s *OccupancyService) GetStayByReference(tenantID uint, ref string) (*models.Stay, error) {
	var stay models.Stay
	err := s.DB.
		Where("tenant_id = ? AND reference_code = ?", tenantID, strings.TrimSpace(ref)).
		Preload("Room").
		First(&stay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStayNotFound
		}
		return nil, dependency("load stay", err)
	}
	return &stay, nil
}
