package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// TenantIDKey is the context key under which the resolved tenant id is
// stored for handlers.
const TenantIDKey = "tenant_id"

// RequireTenant extracts the tenant id from the X-Tenant-ID header and
// stores it in the request context.  Hostname-to-tenant mapping lives
// in the fronting proxy, which injects the header; a request arriving
// without one has bypassed the proxy and is rejected.
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get("X-Tenant-ID")
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing or invalid tenant"})
			}
			c.Set(TenantIDKey, id)
			return next(c)
		}
	}
}

// TenantID reads the tenant id stored by RequireTenant.  The boolean
// is false when the middleware did not run.
func TenantID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(TenantIDKey).(uint64)
	return id, ok
}
