package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openmeadow/eventreg/internal/middleware"
	"github.com/openmeadow/eventreg/internal/service"
)

// StaffHandler serves the authenticated check-in desk endpoints.  All
// routes require a staff JWT whose tenant claim matches the request
// tenant; the middleware enforces that before these handlers run.
type StaffHandler struct {
	Svc *service.RegistrationService
}

// NewStaffHandler constructs a StaffHandler.
func NewStaffHandler(svc *service.RegistrationService) *StaffHandler {
	return &StaffHandler{Svc: svc}
}

// CheckIn marks an attendee as arrived.
// POST /v1/staff/registrations/:id/checkin
func (h *StaffHandler) CheckIn(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	staffID, ok := middleware.StaffID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	reg, err := h.Svc.CheckIn(c.Request().Context(), tenant, id, staffID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(reg, false))
}

// UndoCheckIn reverts a check-in done by mistake.
// POST /v1/staff/registrations/:id/undo-checkin
func (h *StaffHandler) UndoCheckIn(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	reg, err := h.Svc.UndoCheckIn(c.Request().Context(), tenant, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(reg, false))
}

// NoShow flags a registered attendee who never arrived.
// POST /v1/staff/registrations/:id/no-show
func (h *StaffHandler) NoShow(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	reg, err := h.Svc.MarkNoShow(c.Request().Context(), tenant, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(reg, false))
}

// Cancel cancels a registration on an attendee's behalf.  Staff bypass
// the access-token check; possession of a valid staff JWT is the
// credential here.
// DELETE /v1/staff/registrations/:id
func (h *StaffHandler) Cancel(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	out, err := h.Svc.Cancel(c.Request().Context(), tenant, id, "")
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := echo.Map{"cancelled": toRegistrationResponse(out.Cancelled, false)}
	if out.Promoted != nil {
		resp["promoted"] = toRegistrationResponse(out.Promoted, false)
		publishOutcome(c.Request().Context(), h.Svc, tenant, out.Promoted.EventID, out.Promoted, true)
	}
	return c.JSON(http.StatusOK, resp)
}

// Stats aggregates one occurrence's registrations by status.
// GET /v1/staff/events/:event_id/stats?date=YYYY-MM-DD
func (h *StaffHandler) Stats(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	eventID, ok := pathID(c, "event_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	occ, ok := parseDateParam(c, "date")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	stats, err := h.Svc.Stats(c.Request().Context(), tenant, eventID, occ)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
