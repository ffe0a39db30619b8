package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openmeadow/eventreg/internal/config"
	"github.com/openmeadow/eventreg/internal/repository"
	"github.com/openmeadow/eventreg/internal/service"
	"github.com/openmeadow/eventreg/internal/utils"
)

// AuthHandler authenticates staff accounts for the check-in desk.
type AuthHandler struct {
	Cfg   config.Config
	Staff *repository.StaffRepository
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg config.Config, staff *repository.StaffRepository) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Staff: staff}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies a staff email and password for the request tenant and
// issues a signed JWT.  Unknown accounts and wrong passwords produce
// the same 401 so the endpoint does not leak which emails exist.
func (h *AuthHandler) Login(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	acc, err := h.Staff.GetByEmail(c.Request().Context(), tenant, email)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		c.Logger().Errorf("staff lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if !utils.VerifyPassword(acc.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tok, err := utils.NewStaffToken(h.Cfg.JWTSecret, acc.ID, acc.TenantID, acc.Role, h.Cfg.StaffTTLMin)
	if err != nil {
		c.Logger().Errorf("sign staff token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":      tok.Token,
		"expires_at": tok.Exp,
		"role":       acc.Role,
	})
}
