package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-ops-backend/services"
	"hotel-ops-backend/utils"
)

// TenantIDKey is where the resolved tenant id is stored on the context.
// Must match controllers.TenantIDKey.
const TenantIDKey = "tenantID"

// TenantResolver reads X-Tenant-ID (numeric id or slug) and loads the tenant.
// Authentication happened upstream; this layer only scopes the request.
// Unknown and disabled tenants both read as not found so nothing leaks about
// which tenants exist.
func TenantResolver(tenants *services.TenantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("X-Tenant-ID"))
		if raw == "" {
			utils.JSONError(c, http.StatusBadRequest, "error.missingTenant", "X-Tenant-ID header is required")
			c.Abort()
			return
		}

		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			t, lookupErr := tenants.Get(uint(id))
			if lookupErr != nil || !t.Active {
				utils.JSONError(c, http.StatusNotFound, "error.tenantNotFound", "tenant not found")
				c.Abort()
				return
			}
			c.Set(TenantIDKey, t.ID)
			c.Next()
			return
		}

		t, lookupErr := tenants.GetBySlug(raw)
		if lookupErr != nil || !t.Active {
			utils.JSONError(c, http.StatusNotFound, "error.tenantNotFound", "tenant not found")
			c.Abort()
			return
		}
		c.Set(TenantIDKey, t.ID)
		c.Next()
	}
}
