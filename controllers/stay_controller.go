package controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-ops-backend/services"
	"hotel-ops-backend/utils"
)

type StayController struct {
	Occupancy *services.OccupancyService
}

func NewStayController(svc *services.OccupancyService) *StayController {
	return &StayController{Occupancy: svc}
}

type checkInPayload struct {
	RoomID uint `json:"roomId" binding:"required"`

	GuestName    string `json:"guestName" binding:"required"`
	GuestEmail   string `json:"guestEmail"`
	GuestPhone   string `json:"guestPhone" binding:"required"`
	IDType       string `json:"idType"`
	IDNumber     string `json:"idNumber" binding:"required"`
	GuestAddress string `json:"guestAddress"`

	CheckInDate  string `json:"checkInDate" binding:"required"`
	CheckOutDate string `json:"checkOutDate" binding:"required"`

	Adults   int `json:"adults"`
	Children int `json:"children"`

	AdvancePayment decimal.Decimal `json:"advancePayment"`
}

// parseStayDate accepts "2006-01-02" and RFC3339.
func parseStayDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
}

// POST /api/stays/check-in
func (ctrl *StayController) CheckIn(c *gin.Context) {
	var payload checkInPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("CheckIn bind error: %v", err)
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "invalid check-in payload: "+err.Error())
		return
	}

	checkIn, err := parseStayDate(payload.CheckInDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}
	checkOut, err := parseStayDate(payload.CheckOutDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	stay, err := ctrl.Occupancy.CheckIn(tenantID(c), services.CheckInInput{
		RoomID:         payload.RoomID,
		GuestName:      payload.GuestName,
		GuestEmail:     payload.GuestEmail,
		GuestPhone:     payload.GuestPhone,
		IDType:         payload.IDType,
		IDNumber:       payload.IDNumber,
		GuestAddress:   payload.GuestAddress,
		CheckInDate:    checkIn,
		CheckOutDate:   checkOut,
		Adults:         payload.Adults,
		Children:       payload.Children,
		AdvancePayment: payload.AdvancePayment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stay)
}

type checkOutPayload struct {
	AdditionalCharges decimal.Decimal `json:"additionalCharges"`
	FinalPayment      decimal.Decimal `json:"finalPayment"`
}

// POST /api/stays/:id/check-out
func (ctrl *StayController) CheckOut(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var payload checkOutPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "invalid check-out payload: "+err.Error())
		return
	}

	stay, err := ctrl.Occupancy.CheckOut(tenantID(c), id, payload.AdditionalCharges, payload.FinalPayment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// An outstanding balance is surfaced, not treated as a failure.
	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"data":          stay,
		"pendingAmount": stay.PendingAmount,
	})
}

// GET /api/stays?status=checked_in
func (ctrl *StayController) GetStays(c *gin.Context) {
	stays, err := ctrl.Occupancy.ListStays(tenantID(c), c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stays)
}

// GET /api/stays/:id
func (ctrl *StayController) GetStay(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	stay, err := ctrl.Occupancy.GetStay(tenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stay)
}

// GET /api/stays/:id/bill-preview?additional_charges=500
func (ctrl *StayController) BillPreview(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	additional := decimal.Zero
	if raw := c.Query("additional_charges"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "additional_charges must be a number")
			return
		}
		additional = parsed
	}

	bill, err := ctrl.Occupancy.BillPreview(tenantID(c), id, additional)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bill)
}

// PATCH /api/stays/:id/advance
func (ctrl *StayController) UpdateAdvance(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var payload struct {
		AdvancePayment decimal.Decimal `json:"advancePayment"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "advancePayment is required")
		return
	}

	stay, err := ctrl.Occupancy.UpdateAdvance(tenantID(c), id, payload.AdvancePayment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stay)
}
