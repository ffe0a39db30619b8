package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// StaffToken represents a signed HS256 JWT for a staff account along
// with its expiry.  Staff tokens carry the tenant id as a claim so the
// check-in endpoints can verify the caller against the request tenant.
type StaffToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewStaffToken builds and signs a staff JWT.  Claims: sub (staff id),
// tid (tenant id), role, exp and iat.
func NewStaffToken(secret string, staffID, tenantID uint64, role string, ttlMin int) (StaffToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  staffID,
		"tid":  tenantID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return StaffToken{}, err
	}
	return StaffToken{Token: signed, Exp: exp}, nil
}
