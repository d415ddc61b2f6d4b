package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-ops-backend/services"
	"hotel-ops-backend/utils"
)

// TenantIDKey is where the tenant middleware stores the resolved tenant id.
const TenantIDKey = "tenantID"

func tenantID(c *gin.Context) uint {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "invalid "+name+" in path")
		return 0, false
	}
	return uint(parsed), true
}

// respondServiceError maps the service error taxonomy onto HTTP. Validation
// and conflict messages are actionable and pass through verbatim; dependency
// failures surface as a generic retry message.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.notFound", err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "error.conflict", err.Error())
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "something went wrong, please try again")
	}
}
