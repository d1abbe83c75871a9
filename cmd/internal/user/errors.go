package user

import (
	"errors"
	"fmt"
)

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	ErrNotFound      = errors.New("user not found")
	ErrDuplicateName = errors.New("duplicate user name")
	ErrInvalidInput  = errors.New("invalid input")
)

// StoreError wraps an underlying storage failure with the failing operation.
// Msg context must never contain passwords or hashes.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("user.%s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

// IsNotFound reports whether err represents ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicate reports whether err represents ErrDuplicateName.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicateName) }
