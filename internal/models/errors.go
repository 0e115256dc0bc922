package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks an identity with no matching row.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input rejected before any store mutation.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a write that would break a uniqueness or reference rule.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("forbidden")
)

// Error is a domain failure whose Message is safe to show to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds an Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// PublicMessage returns the client-facing message carried by err, or
// fallback when err holds no Error.
func PublicMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}
