package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/openmeadow/eventreg/internal/middleware"
	"github.com/openmeadow/eventreg/internal/service"
)

func newContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.TenantIDKey, uint64(7))
	return c, rec
}

func TestRegisterHoneypotFakesSuccess(t *testing.T) {
	// A filled honeypot field short-circuits before the service runs,
	// so a nil service proves no registration was attempted.
	h := NewPublicHandler(nil)
	c, rec := newContext(t, http.MethodPost, "/v1/events/1/registrations",
		`{"email":"bot@example.com","first_name":"B","last_name":"Ot","website":"http://spam.example"}`)
	c.SetParamNames("event_id")
	c.SetParamValues("1")

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "REGISTERED") {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "access_token") {
		t.Fatal("honeypot response must not leak a token")
	}
}

func TestRegisterRejectsBadEventID(t *testing.T) {
	h := NewPublicHandler(nil)
	c, rec := newContext(t, http.MethodPost, "/v1/events/zero/registrations", `{}`)
	c.SetParamNames("event_id")
	c.SetParamValues("zero")

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterRejectsBadOccurrenceDate(t *testing.T) {
	h := NewPublicHandler(nil)
	c, rec := newContext(t, http.MethodPost, "/v1/events/1/registrations",
		`{"email":"a@example.com","first_name":"A","last_name":"B","occurrence_date":"10/09/2026"}`)
	c.SetParamNames("event_id")
	c.SetParamValues("1")

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrEventNotFound, http.StatusNotFound},
		{service.ErrRegistrationNotFound, http.StatusNotFound},
		{service.ErrAlreadyRegistered, http.StatusConflict},
		{service.ErrAlreadyCancelled, http.StatusConflict},
		{service.ErrAlreadyCheckedIn, http.StatusConflict},
		{service.ErrNotCheckedIn, http.StatusConflict},
		{service.ErrNotRegistered, http.StatusConflict},
		{service.ErrRegistrationNotEnabled, http.StatusBadRequest},
		{service.ErrDeadlinePassed, http.StatusBadRequest},
		{service.ErrCapacityFull, http.StatusBadRequest},
		{service.ErrInvalidInput, http.StatusBadRequest},
	}
	for _, tc := range cases {
		c, rec := newContext(t, http.MethodGet, "/", "")
		if err := writeServiceError(c, tc.err); err != nil {
			t.Fatalf("%v: %v", tc.err, err)
		}
		if rec.Code != tc.code {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.code)
		}
	}
}
