package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops-backend/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStayNights(t *testing.T) {
	testCases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		expected int
	}{
		{"three full nights", date(2024, 1, 10), date(2024, 1, 13), 3},
		{"single night", date(2024, 1, 10), date(2024, 1, 11), 1},
		{"partial day rounds up", date(2024, 1, 10), date(2024, 1, 11).Add(6 * time.Hour), 2},
		{"same-day stay still bills one night", date(2024, 1, 10), date(2024, 1, 10).Add(5 * time.Hour), 1},
		{"checkout before checkin", date(2024, 1, 13), date(2024, 1, 10), 0},
		{"equal instants", date(2024, 1, 10), date(2024, 1, 10), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StayNights(tc.checkIn, tc.checkOut))
		})
	}
}

func TestNewStayBill(t *testing.T) {
	// 3 nights at 2000 with a 1000 advance.
	total, paid, pending := NewStayBill(3, decimal.NewFromInt(2000), decimal.NewFromInt(1000))
	assertDecimal(t, 6000, total)
	assertDecimal(t, 1000, paid)
	assertDecimal(t, 5000, pending)
}

func TestNewStayBill_AdvanceCoversTotal(t *testing.T) {
	total, paid, pending := NewStayBill(2, decimal.NewFromInt(1500), decimal.NewFromInt(3000))
	assertDecimal(t, 3000, total)
	assertDecimal(t, 3000, paid)
	assert.True(t, pending.IsZero())
}

func TestCheckoutBill(t *testing.T) {
	stay := models.Stay{
		TotalAmount: decimal.NewFromInt(6000),
		PaidAmount:  decimal.NewFromInt(1000),
	}

	finalTotal, totalPaid, finalPending := CheckoutBill(stay, decimal.NewFromInt(500), decimal.NewFromInt(5500))
	assertDecimal(t, 6500, finalTotal)
	assertDecimal(t, 6500, totalPaid)
	assert.True(t, finalPending.IsZero())
}

func TestCheckoutBill_OutstandingBalance(t *testing.T) {
	stay := models.Stay{
		TotalAmount: decimal.NewFromInt(6000),
		PaidAmount:  decimal.NewFromInt(1000),
	}

	_, totalPaid, finalPending := CheckoutBill(stay, decimal.NewFromInt(500), decimal.NewFromInt(2000))
	assertDecimal(t, 3000, totalPaid)
	assertDecimal(t, 3500, finalPending)
}

func TestCheckoutBill_OverpaymentClampsAtZero(t *testing.T) {
	stay := models.Stay{
		TotalAmount: decimal.NewFromInt(1000),
		PaidAmount:  decimal.NewFromInt(1000),
	}

	_, _, finalPending := CheckoutBill(stay, decimal.Zero, decimal.NewFromInt(500))
	assert.True(t, finalPending.IsZero(), "pending must never go negative")
}

func TestPreviewBill(t *testing.T) {
	stay := models.Stay{
		TotalAmount: decimal.NewFromInt(6000),
		PaidAmount:  decimal.NewFromInt(1000),
	}

	bill := PreviewBill(stay, decimal.NewFromInt(500))
	assertDecimal(t, 6000, bill.Subtotal)
	assertDecimal(t, 1000, bill.AlreadyPaid)
	assertDecimal(t, 500, bill.AdditionalCharges)
	assertDecimal(t, 5500, bill.Pending)

	// Preview never mutates the stay.
	assertDecimal(t, 1000, stay.PaidAmount)
	assert.True(t, stay.AdditionalCharges.IsZero())
}

func TestRecomputeAdvance(t *testing.T) {
	stay := models.Stay{
		TotalAmount:   decimal.NewFromInt(6000),
		PaidAmount:    decimal.NewFromInt(1000),
		PendingAmount: decimal.NewFromInt(5000),
	}

	paid, pending, err := RecomputeAdvance(stay, decimal.NewFromInt(2500))
	require.NoError(t, err)
	assertDecimal(t, 2500, paid)
	assertDecimal(t, 3500, pending)
}

func TestRecomputeAdvance_NegativeRejected(t *testing.T) {
	_, _, err := RecomputeAdvance(models.Stay{}, decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}
