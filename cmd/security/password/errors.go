package password

import (
	"errors"
	"fmt"
)

// Public, stable errors for callers.
var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrInvalidHash      = errors.New("invalid password hash")
)

// HashError reports an internal hashing failure (bad parameters, entropy
// source failure). It is fatal for the operation and never raised for a
// plain password mismatch.
type HashError struct {
	Op  string
	Err error
}

func (e HashError) Error() string {
	return fmt.Sprintf("password.%s: %v", e.Op, e.Err)
}

func (e HashError) Unwrap() error { return e.Err }
