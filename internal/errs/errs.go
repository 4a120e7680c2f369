// Package errs defines the typed error taxonomy shared by the staging
// and availability services. Handlers map an error's Kind to an HTTP
// status instead of inspecting error text.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindExpired       Kind = "expired"
	KindIntegrity     Kind = "integrity"
	KindEncryption    Kind = "encryption"
	KindDecryption    Kind = "decryption"
	KindConfiguration Kind = "configuration"
	KindStorage       Kind = "storage"
	KindRateLimited   Kind = "rate_limited"
)

// Error is a kind-carrying error. Message is safe to return to clients;
// Err holds the internal cause and is only logged, never serialized.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given kind and client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an internal cause to a kind and client-safe message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors
// report as storage failures, the conservative 500 default.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// MessageOf returns the client-safe message from an error chain, or a
// generic fallback for unclassified errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Is reports whether the error chain carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
