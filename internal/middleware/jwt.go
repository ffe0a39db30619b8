package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"
)

// StaffAuth returns a middleware that validates a Bearer staff token
// and injects the staff id, role and token tenant into the request
// context.  The token's tid claim must match the tenant resolved from
// the request, otherwise a staff member of one tenant could operate
// another tenant's check-in desk.  RequireTenant must run first.
func StaffAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			staffID, ok := claimUint64(claims, "sub")
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			tokenTenant, ok := claimUint64(claims, "tid")
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid tenant claim"})
			}
			if reqTenant, ok := TenantID(c); !ok || reqTenant != tokenTenant {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "token not valid for this tenant"})
			}

			c.Set("staff_id", staffID)
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}

// claimUint64 reads a numeric claim.  JSON numbers decode as float64;
// tokens minted by this service always fit uint64.
func claimUint64(claims jwt.MapClaims, key string) (uint64, bool) {
	switch v := claims[key].(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}

// StaffID reads the staff id stored by StaffAuth.
func StaffID(c echo.Context) (uint64, bool) {
	id, ok := c.Get("staff_id").(uint64)
	return id, ok
}
