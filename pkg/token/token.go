// Package token generates opaque session identifiers for staged
// bookings.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SessionIDBytes is the entropy of a session identifier. 24 bytes is
// 192 bits, comfortably past the point where collisions or guesses are
// a concern.
const SessionIDBytes = 24

// NewSessionID returns a URL-safe, cryptographically random session
// identifier. It carries no structure and no timestamp.
func NewSessionID() (string, error) {
	b := make([]byte, SessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
