package utils // package utils provides helpers for tokens and password hashing

import (
	"crypto/rand"   // secure random number generation
	"encoding/hex"  // hex encoding for opaque tokens
)

// registrationTokenBytes sizes the self-service access token.  32
// random bytes (64 hex characters) make the token the sole bearer
// credential: it cannot be derived from the registration id nor from
// any other registration's token.
const registrationTokenBytes = 32

// NewRegistrationToken returns a fresh opaque access token for a
// registration.  The token is generated once at create time and never
// rotated.
func NewRegistrationToken() (string, error) {
	return randomHex(registrationTokenBytes)
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
