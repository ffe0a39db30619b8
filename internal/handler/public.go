package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openmeadow/eventreg/internal/model"
	"github.com/openmeadow/eventreg/internal/notify"
	"github.com/openmeadow/eventreg/internal/service"
)

// PublicHandler serves the unauthenticated attendee-facing endpoints:
// registering, self-service lookup and cancellation by access token,
// and the occurrence calendar.
type PublicHandler struct {
	Svc *service.RegistrationService
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(svc *service.RegistrationService) *PublicHandler {
	return &PublicHandler{Svc: svc}
}

type registerRequest struct {
	OccurrenceDate      string  `json:"occurrence_date"`
	Email               string  `json:"email"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	Phone               *string `json:"phone"`
	AdditionalAttendees int     `json:"additional_attendees"`
	ReminderOptIn       bool    `json:"reminder_opt_in"`
	// Website is a honeypot.  The public form renders it hidden, so a
	// human never fills it; bots that do get a fake success and no row.
	Website string `json:"website"`
}

// registrationResponse is the public projection of a registration.
// The access token appears only here, at creation time, and on the
// token-lookup path that already proved possession of it.
type registrationResponse struct {
	ID                  uint64                   `json:"id"`
	EventID             uint64                   `json:"event_id"`
	OccurrenceDate      *string                  `json:"occurrence_date,omitempty"`
	Email               string                   `json:"email"`
	FirstName           string                   `json:"first_name"`
	LastName            string                   `json:"last_name"`
	AdditionalAttendees int                      `json:"additional_attendees"`
	Status              model.RegistrationStatus `json:"status"`
	WaitlistPosition    *int                     `json:"waitlist_position,omitempty"`
	AccessToken         string                   `json:"access_token,omitempty"`
	CheckedInAt         *time.Time               `json:"checked_in_at,omitempty"`
}

func toRegistrationResponse(reg *model.Registration, withToken bool) registrationResponse {
	resp := registrationResponse{
		ID:                  reg.ID,
		EventID:             reg.EventID,
		Email:               reg.Email,
		FirstName:           reg.FirstName,
		LastName:            reg.LastName,
		AdditionalAttendees: reg.AdditionalAttendees,
		Status:              reg.Status,
		WaitlistPosition:    reg.WaitlistPosition,
		CheckedInAt:         reg.CheckedInAt,
	}
	if reg.OccurrenceDate != nil {
		d := reg.OccurrenceDate.Format("2006-01-02")
		resp.OccurrenceDate = &d
	}
	if withToken {
		resp.AccessToken = reg.AccessToken
	}
	return resp
}

// Register creates a registration for one occurrence of an event.
// POST /v1/events/:event_id/registrations
func (h *PublicHandler) Register(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	eventID, ok := pathID(c, "event_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	// Honeypot tripped: claim success, store nothing, alert nobody.
	if req.Website != "" {
		return c.JSON(http.StatusCreated, echo.Map{"status": string(model.StatusRegistered)})
	}

	var occ *time.Time
	if req.OccurrenceDate != "" {
		t, err := time.Parse("2006-01-02", req.OccurrenceDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "occurrence_date must be YYYY-MM-DD"})
		}
		t = t.UTC()
		occ = &t
	}

	reg, err := h.Svc.Create(c.Request().Context(), service.CreateInput{
		TenantID:            tenant,
		EventID:             eventID,
		OccurrenceDate:      occ,
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Phone:               req.Phone,
		AdditionalAttendees: req.AdditionalAttendees,
		ReminderOptIn:       req.ReminderOptIn,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	publishOutcome(c.Request().Context(), h.Svc, tenant, eventID, reg, false)
	return c.JSON(http.StatusCreated, toRegistrationResponse(reg, true))
}

// LookupByToken returns a registration and a minimal event projection.
// GET /v1/registrations/token/:token
func (h *PublicHandler) LookupByToken(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	reg, ev, err := h.Svc.GetByToken(c.Request().Context(), tenant, c.Param("token"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"registration": toRegistrationResponse(reg, true),
		"event":        ev,
	})
}

// CancelByToken cancels a registration by its access token.
// DELETE /v1/registrations/token/:token
func (h *PublicHandler) CancelByToken(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	token := c.Param("token")
	reg, _, err := h.Svc.GetByToken(c.Request().Context(), tenant, token)
	if err != nil {
		return writeServiceError(c, err)
	}
	out, err := h.Svc.Cancel(c.Request().Context(), tenant, reg.ID, token)
	if err != nil {
		return writeServiceError(c, err)
	}
	if out.Promoted != nil {
		publishOutcome(c.Request().Context(), h.Svc, tenant, out.Promoted.EventID, out.Promoted, true)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cancelled": toRegistrationResponse(out.Cancelled, false),
	})
}

// Occurrences expands an event's occurrence dates inside a window.
// GET /v1/events/:event_id/occurrences?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *PublicHandler) Occurrences(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	eventID, ok := pathID(c, "event_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	from, ok := parseDateParam(c, "from")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, ok := parseDateParam(c, "to")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}
	// Default window: today through 90 days out.
	now := time.Now().UTC().Truncate(24 * time.Hour)
	if from == nil {
		from = &now
	}
	if to == nil {
		end := now.AddDate(0, 0, 90)
		to = &end
	}

	dates, err := h.Svc.Occurrences(c.Request().Context(), tenant, eventID, *from, *to)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": eventID, "occurrences": out})
}

// Capacity reports the live capacity snapshot for one occurrence.
// GET /v1/events/:event_id/capacity?date=YYYY-MM-DD
func (h *PublicHandler) Capacity(c echo.Context) error {
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
	st, err := h.Svc.CapacityStatus(c.Request().Context(), tenant, eventID, occ)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// publishOutcome emits the confirmation / waitlist / promotion message
// for a finished registration outcome.  Failures are already logged by
// the notify package and deliberately dropped here.
func publishOutcome(ctx context.Context, svc *service.RegistrationService, tenant, eventID uint64, reg *model.Registration, promoted bool) {
	kind := notify.KindConfirmed
	switch {
	case promoted:
		kind = notify.KindPromoted
	case reg.Status == model.StatusWaitlisted:
		kind = notify.KindWaitlisted
	}
	msg := notify.RegistrationEvent{
		Kind:           kind,
		TenantID:       tenant,
		RegistrationID: reg.ID,
		EventID:        eventID,
		Email:          reg.Email,
		FirstName:      reg.FirstName,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if ev, err := svc.GetEvent(ctx, tenant, eventID); err == nil {
		msg.EventTitle = ev.Title
	}
	if reg.OccurrenceDate != nil {
		msg.OccurrenceDate = reg.OccurrenceDate.Format("2006-01-02")
	}
	if reg.WaitlistPosition != nil {
		msg.WaitlistPosition = *reg.WaitlistPosition
	}
	_ = notify.PublishRegistrationEvent(ctx, msg)
}
