package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/openmeadow/eventreg/internal/utils"
)

func run(mw echo.MiddlewareFunc, req *http.Request, prepare func(echo.Context)) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if prepare != nil {
		prepare(c)
	}
	reached := false
	_ = mw(func(echo.Context) error {
		reached = true
		return nil
	})(c)
	return rec, reached
}

func TestRequireTenant(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-ID", "42")
	_, reached := run(RequireTenant(), req, nil)
	if !reached {
		t.Fatal("valid tenant header blocked")
	}

	for _, raw := range []string{"", "0", "-1", "acme"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if raw != "" {
			req.Header.Set("X-Tenant-ID", raw)
		}
		rec, reached := run(RequireTenant(), req, nil)
		if reached || rec.Code != http.StatusBadRequest {
			t.Errorf("tenant %q: reached=%v code=%d", raw, reached, rec.Code)
		}
	}
}

func TestStaffAuthTenantMatch(t *testing.T) {
	const secret = "test-secret"
	tok, err := utils.NewStaffToken(secret, 11, 7, "STAFF", 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	authed := func(tenant uint64) (*httptest.ResponseRecorder, bool) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		return run(StaffAuth(secret), req, func(c echo.Context) {
			c.Set(TenantIDKey, tenant)
		})
	}

	if _, reached := authed(7); !reached {
		t.Fatal("matching tenant rejected")
	}
	if rec, reached := authed(8); reached || rec.Code != http.StatusForbidden {
		t.Fatalf("cross-tenant token: reached=%v code=%d, want 403", reached, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if rec, reached := run(StaffAuth(secret), req, nil); reached || rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: reached=%v code=%d, want 401", reached, rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	if rec, reached := run(StaffAuth(secret), req, nil); reached || rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: reached=%v code=%d, want 401", reached, rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole("STAFF", "ADMIN")

	cases := map[string]struct {
		role    interface{}
		allowed bool
	}{
		"staff":   {"STAFF", true},
		"admin":   {"ADMIN", true},
		"viewer":  {"VIEWER", false},
		"missing": {nil, false},
	}
	for name, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec, reached := run(mw, req, func(c echo.Context) {
			if tc.role != nil {
				c.Set("role", tc.role)
			}
		})
		if reached != tc.allowed {
			t.Errorf("%s: reached=%v, want %v (code %d)", name, reached, tc.allowed, rec.Code)
		}
	}
}
