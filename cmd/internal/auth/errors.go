package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for both unknown usernames and
	// wrong passwords. The two cases are deliberately indistinguishable
	// to callers so usernames cannot be enumerated through login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is returned when the account exists but has been
	// disabled, regardless of whether the password is correct.
	ErrAccountDisabled = errors.New("account disabled")
)

// IsInvalidCredentials reports whether err represents ErrInvalidCredentials.
func IsInvalidCredentials(err error) bool { return errors.Is(err, ErrInvalidCredentials) }

// IsAccountDisabled reports whether err represents ErrAccountDisabled.
func IsAccountDisabled(err error) bool { return errors.Is(err, ErrAccountDisabled) }
