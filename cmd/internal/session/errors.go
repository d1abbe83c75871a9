package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a token does not match any
	// active session (missing, expired and revoked are indistinguishable).
	ErrSessionNotFound = errors.New("session not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")

	// ErrInvalidInput is returned for missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError wraps an underlying storage failure with the failing operation.
// Msg context must never contain session tokens.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("session.%s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

// IsNotFound reports whether err represents ErrSessionNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrSessionNotFound) }
