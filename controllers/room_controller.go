package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops-backend/services"
	"hotel-ops-backend/utils"
)

type RoomController struct {
	Occupancy *services.OccupancyService
}

func NewRoomController(svc *services.OccupancyService) *RoomController {
	return &RoomController{Occupancy: svc}
}

// GET /api/rooms
func (ctrl *RoomController) GetRooms(c *gin.Context) {
	rooms, err := ctrl.Occupancy.ListRooms(tenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// POST /api/rooms
func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	var in services.RoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Printf("CreateRoom bind error: %v", err)
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "invalid request payload: "+err.Error())
		return
	}

	room, err := ctrl.Occupancy.CreateRoom(tenantID(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// GET /api/rooms/:id
func (ctrl *RoomController) GetRoom(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	room, err := ctrl.Occupancy.GetRoom(tenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// PUT /api/rooms/:id
func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "invalid request payload: "+err.Error())
		return
	}

	room, err := ctrl.Occupancy.UpdateRoom(tenantID(c), id, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// PATCH /api/rooms/:id/status
func (ctrl *RoomController) UpdateRoomStatus(c *gin.Context) {
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

	room, err := ctrl.Occupancy.SetRoomStatus(tenantID(c), id, payload.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// DELETE /api/rooms/:id
func (ctrl *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := ctrl.Occupancy.DeleteRoom(tenantID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Room deleted successfully")
}
