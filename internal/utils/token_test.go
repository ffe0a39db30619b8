package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewRegistrationToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := NewRegistrationToken()
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if len(tok) != registrationTokenBytes*2 {
			t.Fatalf("token length %d, want %d", len(tok), registrationTokenBytes*2)
		}
		if seen[tok] {
			t.Fatal("duplicate token")
		}
		seen[tok] = true
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "hunter2") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "hunter3") {
		t.Fatal("wrong password accepted")
	}
}

func TestStaffTokenClaims(t *testing.T) {
	tok, err := NewStaffToken("test-secret", 11, 7, "STAFF", 30)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"].(float64) != 11 || claims["tid"].(float64) != 7 || claims["role"] != "STAFF" {
		t.Fatalf("claims = %v", claims)
	}

	if _, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	}); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}
