package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops-backend/services"
	"hotel-ops-backend/utils"
)

type TenantController struct {
	Tenants *services.TenantService
}

func NewTenantController(svc *services.TenantService) *TenantController {
	return &TenantController{Tenants: svc}
}

// POST /api/tenants — onboarding entry point, called by the admin surface.
func (ctrl *TenantController) CreateTenant(c *gin.Context) {
	var in services.TenantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "slug and name are required")
		return
	}

	tenant, err := ctrl.Tenants.Create(in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

// GET /api/tenants/me
func (ctrl *TenantController) GetMe(c *gin.Context) {
	tenant, err := ctrl.Tenants.Get(tenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// PUT /api/tenants/me/settings
func (ctrl *TenantController) UpdateSettings(c *gin.Context) {
	var in services.TenantSettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "invalid settings payload: "+err.Error())
		return
	}

	tenant, err := ctrl.Tenants.UpdateSettings(tenantID(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}
