package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openmeadow/eventreg/internal/middleware"
	"github.com/openmeadow/eventreg/internal/service"
)

// tenantID pulls the tenant resolved by middleware.RequireTenant.
func tenantID(c echo.Context) (uint64, error) {
	id, ok := middleware.TenantID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "missing tenant")
	}
	return id, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// parseDateParam parses an optional YYYY-MM-DD query parameter into an
// occurrence date.  A missing parameter yields nil (the non-recurring
// occurrence); a malformed one is an error.
func parseDateParam(c echo.Context, name string) (*time.Time, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	t = t.UTC()
	return &t, true
}

// writeServiceError maps service errors onto HTTP responses.  The
// mapping matrix: missing things are 404, duplicate registration and
// state-machine violations are 409, everything else the caller can fix
// is 400, anything unexpected is logged and surfaced as a generic 500.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrRegistrationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrAlreadyCheckedIn),
		errors.Is(err, service.ErrNotCheckedIn),
		errors.Is(err, service.ErrNotRegistered):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrRegistrationNotEnabled),
		errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrCapacityFull),
		errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("registration operation failed: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
