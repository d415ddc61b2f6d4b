package services

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops-backend/models"
)

func checkInInput(roomID uint) CheckInInput {
	return CheckInInput{
		RoomID:         roomID,
		GuestName:      "Ann Example",
		GuestPhone:     "+66 81 000 0000",
		IDType:         "passport",
		IDNumber:       "P1234567",
		CheckInDate:    date(2024, 1, 10),
		CheckOutDate:   date(2024, 1, 13),
		Adults:         2,
		AdvancePayment: decimal.NewFromInt(1000),
	}
}

func TestCheckIn_Success(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	stay, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	assert.Equal(t, models.StayStatusCheckedIn, stay.Status)
	assert.Equal(t, 3, stay.TotalNights)
	assertDecimal(t, 2000, stay.RatePerNight)
	assertDecimal(t, 6000, stay.TotalAmount)
	assertDecimal(t, 1000, stay.PaidAmount)
	assertDecimal(t, 5000, stay.PendingAmount)
	assert.NotEmpty(t, stay.ReferenceCode)

	var persisted models.Room
	require.NoError(t, db.First(&persisted, room.ID).Error)
	assert.Equal(t, models.RoomStatusOccupied, persisted.Status)
	require.NotNil(t, persisted.ActiveStayID)
	assert.Equal(t, stay.ID, *persisted.ActiveStayID)
}

func TestCheckIn_RateSnapshotSurvivesRoomEdit(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	stay, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	// Raising the room rate must not touch the active stay's bill.
	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", room.ID).
		Update("rate_per_night", decimal.NewFromInt(9000)).Error)

	reloaded, err := svc.GetStay(tenant.ID, stay.ID)
	require.NoError(t, err)
	assertDecimal(t, 2000, reloaded.RatePerNight)
	assertDecimal(t, 6000, reloaded.TotalAmount)
}

func TestCheckIn_RoomNotAvailable(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	first, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	_, err = svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRoomNotAvailable)
	assert.ErrorIs(t, err, ErrConflict)

	// The failed attempt must leave existing state untouched.
	var persisted models.Room
	require.NoError(t, db.First(&persisted, room.ID).Error)
	assert.Equal(t, models.RoomStatusOccupied, persisted.Status)
	require.NotNil(t, persisted.ActiveStayID)
	assert.Equal(t, first.ID, *persisted.ActiveStayID)

	var stayCount int64
	require.NoError(t, db.Model(&models.Stay{}).Where("room_id = ?", room.ID).Count(&stayCount).Error)
	assert.EqualValues(t, 1, stayCount)
}

func TestCheckIn_MaintenanceRoomRefused(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	_, err := svc.SetRoomStatus(tenant.ID, room.ID, models.RoomStatusMaintenance)
	require.NoError(t, err)

	_, err = svc.CheckIn(tenant.ID, checkInInput(room.ID))
	assert.ErrorIs(t, err, ErrRoomNotAvailable)
}

func TestCheckIn_TenantIsolation(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	alpha := seedTenant(t, db, "alpha")
	beta := seedTenant(t, db, "beta")
	room := seedRoom(t, db, alpha.ID, "101", 2000)

	// Another tenant's room reads as not found, not as a conflict.
	_, err := svc.CheckIn(beta.ID, checkInInput(room.ID))
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCheckIn_InvalidDateRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	in := checkInInput(room.ID)
	in.CheckOutDate = in.CheckInDate
	_, err := svc.CheckIn(tenant.ID, in)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	in.CheckOutDate = in.CheckInDate.AddDate(0, 0, -2)
	_, err = svc.CheckIn(tenant.ID, in)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestCheckIn_MissingGuestFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	for name, mutate := range map[string]func(*CheckInInput){
		"name":  func(in *CheckInInput) { in.GuestName = "  " },
		"phone": func(in *CheckInInput) { in.GuestPhone = "" },
		"id":    func(in *CheckInInput) { in.IDNumber = "" },
	} {
		t.Run(name, func(t *testing.T) {
			in := checkInInput(room.ID)
			mutate(&in)
			_, err := svc.CheckIn(tenant.ID, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// No stay may exist after pure validation failures.
	var count int64
	require.NoError(t, db.Model(&models.Stay{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckIn_OverOccupancy(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000) // sleeps 4

	in := checkInInput(room.ID)
	in.Adults = 4
	in.Children = 2
	_, err := svc.CheckIn(tenant.ID, in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckOut_Success(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	stay, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	closed, err := svc.CheckOut(tenant.ID, stay.ID, decimal.NewFromInt(500), decimal.NewFromInt(5500))
	require.NoError(t, err)

	assert.Equal(t, models.StayStatusCheckedOut, closed.Status)
	assertDecimal(t, 500, closed.AdditionalCharges)
	assertDecimal(t, 6500, closed.PaidAmount)
	assert.True(t, closed.PendingAmount.IsZero())
	require.NotNil(t, closed.ActualCheckout)

	var persisted models.Room
	require.NoError(t, db.First(&persisted, room.ID).Error)
	assert.Equal(t, models.RoomStatusAvailable, persisted.Status)
	assert.Nil(t, persisted.ActiveStayID)
}

func TestCheckOut_OutstandingBalanceRecorded(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	stay, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	// Guest leaves without settling: the checkout still succeeds and the
	// balance is kept on the record for follow-up.
	closed, err := svc.CheckOut(tenant.ID, stay.ID, decimal.NewFromInt(500), decimal.Zero)
	require.NoError(t, err)
	assertDecimal(t, 5500, closed.PendingAmount)

	var persisted models.Room
	require.NoError(t, db.First(&persisted, room.ID).Error)
	assert.Equal(t, models.RoomStatusAvailable, persisted.Status)
}

func TestCheckOut_AlreadyClosed(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	stay, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	_, err = svc.CheckOut(tenant.ID, stay.ID, decimal.Zero, decimal.NewFromInt(5000))
	require.NoError(t, err)

	_, err = svc.CheckOut(tenant.ID, stay.ID, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrStayAlreadyClosed)
}

func TestCheckOut_StayNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")

	_, err := svc.CheckOut(tenant.ID, 9999, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrStayNotFound)
}

func TestConcurrentCheckIn_ExactlyOneWinner(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CheckIn(tenant.ID, checkInInput(room.ID))
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent check-in may win")
	assert.Equal(t, attempts-1, conflicts)

	var stayCount int64
	require.NoError(t, db.Model(&models.Stay{}).Where("room_id = ?", room.ID).Count(&stayCount).Error)
	assert.EqualValues(t, 1, stayCount, "room must never carry two active stays")
}

func TestSetRoomStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	updated, err := svc.SetRoomStatus(tenant.ID, room.ID, models.RoomStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusMaintenance, updated.Status)

	updated, err = svc.SetRoomStatus(tenant.ID, room.ID, models.RoomStatusOutOfOrder)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOutOfOrder, updated.Status)

	updated, err = svc.SetRoomStatus(tenant.ID, room.ID, models.RoomStatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, updated.Status)

	_, err = svc.SetRoomStatus(tenant.ID, room.ID, "penthouse")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetRoomStatus(tenant.ID, room.ID, models.RoomStatusOccupied)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetRoomStatus_OccupiedRefuses(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	_, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	_, err = svc.SetRoomStatus(tenant.ID, room.ID, models.RoomStatusMaintenance)
	assert.ErrorIs(t, err, ErrRoomOccupied)
}

func TestDeleteRoom_OccupiedRefuses(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	_, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	err = svc.DeleteRoom(tenant.ID, room.ID)
	assert.ErrorIs(t, err, ErrRoomOccupied)

	// Still there.
	_, err = svc.GetRoom(tenant.ID, room.ID)
	require.NoError(t, err)
}

func TestCreateRoom_DuplicateNumber(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")

	_, err := svc.CreateRoom(tenant.ID, RoomInput{Number: "101", RatePerNight: decimal.NewFromInt(2000)})
	require.NoError(t, err)

	_, err = svc.CreateRoom(tenant.ID, RoomInput{Number: "101", RatePerNight: decimal.NewFromInt(2500)})
	assert.ErrorIs(t, err, ErrRoomNumberTaken)
}

func TestCreateRoom_SameNumberDifferentTenant(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	alpha := seedTenant(t, db, "alpha")
	beta := seedTenant(t, db, "beta")

	_, err := svc.CreateRoom(alpha.ID, RoomInput{Number: "101", RatePerNight: decimal.NewFromInt(2000)})
	require.NoError(t, err)

	// Uniqueness is per tenant, not global.
	_, err = svc.CreateRoom(beta.ID, RoomInput{Number: "101", RatePerNight: decimal.NewFromInt(1800)})
	require.NoError(t, err)
}

func TestUpdateRoom_ProtectedFieldsStripped(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	updated, err := svc.UpdateRoom(tenant.ID, room.ID, map[string]interface{}{
		"name":   "Garden View 101",
		"status": models.RoomStatusOccupied, // must be ignored
	})
	require.NoError(t, err)
	assert.Equal(t, "Garden View 101", updated.Name)
	assert.Equal(t, models.RoomStatusAvailable, updated.Status)
}

func TestBillPreview_DoesNotMutate(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	stay, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	bill, err := svc.BillPreview(tenant.ID, stay.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assertDecimal(t, 6000, bill.Subtotal)
	assertDecimal(t, 1000, bill.AlreadyPaid)
	assertDecimal(t, 5500, bill.Pending)

	reloaded, err := svc.GetStay(tenant.ID, stay.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StayStatusCheckedIn, reloaded.Status)
	assert.True(t, reloaded.AdditionalCharges.IsZero())
}

func TestUpdateAdvance(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	stay, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	updated, err := svc.UpdateAdvance(tenant.ID, stay.ID, decimal.NewFromInt(2500))
	require.NoError(t, err)
	assertDecimal(t, 2500, updated.PaidAmount)
	assertDecimal(t, 3500, updated.PendingAmount)
	assertDecimal(t, 6000, updated.TotalAmount)

	_, err = svc.UpdateAdvance(tenant.ID, stay.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListStays_StatusFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	roomA := seedRoom(t, db, tenant.ID, "101", 2000)
	roomB := seedRoom(t, db, tenant.ID, "102", 2000)

	stayA, err := svc.CheckIn(tenant.ID, checkInInput(roomA.ID))
	require.NoError(t, err)
	_, err = svc.CheckIn(tenant.ID, checkInInput(roomB.ID))
	require.NoError(t, err)

	_, err = svc.CheckOut(tenant.ID, stayA.ID, decimal.Zero, decimal.NewFromInt(5000))
	require.NoError(t, err)

	active, err := svc.ListStays(tenant.ID, models.StayStatusCheckedIn)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, roomB.ID, active[0].RoomID)

	all, err := svc.ListStays(tenant.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListStays(tenant.ID, "sleeping")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetStayByReference(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	stay, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)

	found, err := svc.GetStayByReference(tenant.ID, stay.ReferenceCode)
	require.NoError(t, err)
	assert.Equal(t, stay.ID, found.ID)

	_, err = svc.GetStayByReference(tenant.ID, "STY-NOPE0000")
	assert.ErrorIs(t, err, ErrStayNotFound)
}

// Guards the core invariant across a whole lifecycle: occupied ⇔ active stay.
func TestRoomStayPairingInvariant(t *testing.T) {
	db := newTestDB(t)
	svc := NewOccupancyService(db)
	tenant := seedTenant(t, db, "alpha")
	room := seedRoom(t, db, tenant.ID, "101", 2000)

	assertInvariant := func() {
		var r models.Room
		require.NoError(t, db.First(&r, room.ID).Error)
		if r.Status == models.RoomStatusOccupied {
			assert.NotNil(t, r.ActiveStayID)
		} else {
			assert.Nil(t, r.ActiveStayID)
		}
	}

	assertInvariant()
	stay, err := svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)
	assertInvariant()
	_, err = svc.CheckOut(tenant.ID, stay.ID, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assertInvariant()

	// And again, because checkout must leave the room reusable.
	_, err = svc.CheckIn(tenant.ID, checkInInput(room.ID))
	require.NoError(t, err)
	assertInvariant()
}
