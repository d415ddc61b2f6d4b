package services

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"hotel-ops-backend/models"
)

// Bill is the four-figure summary staff see before and after a checkout.
type Bill struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	AlreadyPaid       decimal.Decimal `json:"alreadyPaid"`
	AdditionalCharges decimal.Decimal `json:"additionalCharges"`
	Pending           decimal.Decimal `json:"pending"`
}

// StayNights returns the billable nights between check-in and check-out:
// the day difference rounded up, never less than one night.
func StayNights(checkIn, checkOut time.Time) int {
	if !checkOut.After(checkIn) {
		return 0
	}
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 1 {
		nights = 1
	}
	return nights
}

// pendingAfter clamps total-paid at zero; a guest can overpay without the
// ledger ever going negative.
func pendingAfter(total, paid decimal.Decimal) decimal.Decimal {
	pending := total.Sub(paid)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// NewStayBill computes the opening figures for a check-in.
func NewStayBill(nights int, ratePerNight, advance decimal.Decimal) (total, paid, pending decimal.Decimal) {
	total = ratePerNight.Mul(decimal.NewFromInt(int64(nights)))
	paid = advance
	pending = pendingAfter(total, paid)
	return total, paid, pending
}

// CheckoutBill computes the final figures when a stay is closed out.
func CheckoutBill(stay models.Stay, additionalCharges, finalPayment decimal.Decimal) (finalTotal, totalPaid, finalPending decimal.Decimal) {
	finalTotal = stay.TotalAmount.Add(additionalCharges)
	totalPaid = stay.PaidAmount.Add(finalPayment)
	finalPending = pendingAfter(finalTotal, totalPaid)
	return finalTotal, totalPaid, finalPending
}

// PreviewBill returns the checkout figures without touching the stay. The
// desk uses it to show the guest a final amount before committing.
func PreviewBill(stay models.Stay, additionalCharges decimal.Decimal) Bill {
	_, totalPaid, finalPending := CheckoutBill(stay, additionalCharges, decimal.Zero)
	return Bill{
		Subtotal:          stay.TotalAmount,
		AlreadyPaid:       totalPaid,
		AdditionalCharges: additionalCharges,
		Pending:           finalPending,
	}
}

// RecomputeAdvance returns the corrected paid/pending figures for an active
// stay whose advance payment is being adjusted. TotalAmount never changes.
func RecomputeAdvance(stay models.Stay, newAdvance decimal.Decimal) (paid, pending decimal.Decimal, err error) {
	if newAdvance.IsNegative() {
		return decimal.Zero, decimal.Zero, invalid("advance payment cannot be negative")
	}
	paid = newAdvance
	pending = pendingAfter(stay.TotalAmount, paid)
	return paid, pending, nil
}
