// Package envelope provides authenticated encryption and tamper
// detection for staged reservation payloads.
//
// Ciphertexts are self-contained: each Seal draws a fresh random
// XChaCha20-Poly1305 nonce, prepends it to the ciphertext and encodes
// the whole blob as base64url, so Open needs nothing beyond the key.
package envelope

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrSeal indicates an encryption failure.
	ErrSeal = errors.New("failed to seal payload")
	// ErrOpen indicates a decryption failure: malformed input, wrong
	// key, or a ciphertext that failed authentication.
	ErrOpen = errors.New("failed to open payload")
	// ErrKey indicates an unusable key.
	ErrKey = errors.New("invalid encryption key")
)

// Envelope seals and opens payloads and provides an independent
// integrity digest over the plaintext.
type Envelope interface {
	Seal(plaintext string) (string, error)
	Open(ciphertext string) (string, error)
	Hash(plaintext string) string
	Verify(plaintext, digest string) bool
}

// aeadEnvelope is the sole implementation, constructed once at process
// start with the configured key.
type aeadEnvelope struct {
	key []byte
}

// New creates an Envelope from a raw 32-byte key.
func New(key []byte) (Envelope, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrKey, chacha20poly1305.KeySize, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &aeadEnvelope{key: k}, nil
}

// NewFromEncoded creates an Envelope from a hex or base64 encoded key
// string, as stored in the environment.
func NewFromEncoded(encoded string) (Envelope, error) {
	key, err := DecodeKey(encoded)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// DecodeKey decodes a hex, base64 or base64url key string.
func DecodeKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty key", ErrKey)
	}
	if key, err := hex.DecodeString(encoded); err == nil {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return key, nil
	}
	if key, err := base64.RawURLEncoding.DecodeString(encoded); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: not hex or base64", ErrKey)
}

// Seal encrypts the plaintext under a fresh random nonce.
func (e *aeadEnvelope) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(e.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSeal, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: nonce generation: %v", ErrSeal, err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a Seal output. The error never includes plaintext or
// key material.
func (e *aeadEnvelope) Open(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: malformed encoding", ErrOpen)
	}

	aead, err := chacha20poly1305.NewX(e.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOpen, err)
	}

	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("%w: truncated input", ErrOpen)
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrOpen)
	}
	return string(plaintext), nil
}

// Hash returns a hex SHA-256 digest of the plaintext, independent of
// the encryption key.
func (e *aeadEnvelope) Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes Hash and compares in constant time.
func (e *aeadEnvelope) Verify(plaintext, digest string) bool {
	expected := e.Hash(plaintext)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(digest)) == 1
}
