package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops-backend/services"
	"hotel-ops-backend/utils"
)

type RequestController struct {
	Requests *services.RequestService
}

func NewRequestController(svc *services.RequestService) *RequestController {
	return &RequestController{Requests: svc}
}

// POST /api/requests — the guest surface. Rate-limited in the router.
func (ctrl *RequestController) SubmitRequest(c *gin.Context) {
	var in services.SubmitRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Printf("SubmitRequest bind error: %v", err)
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "invalid request payload: "+err.Error())
		return
	}

	req, err := ctrl.Requests.Submit(tenantID(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GET /api/requests?status=pending&type=order_food
func (ctrl *RequestController) GetRequests(c *gin.Context) {
	requests, err := ctrl.Requests.List(tenantID(c), c.Query("status"), c.Query("type"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// PATCH /api/requests/:id/status
func (ctrl *RequestController) UpdateRequestStatus(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var payload struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "status is required")
		return
	}

	req, err := ctrl.Requests.UpdateStatus(tenantID(c), id, payload.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
