package user

import (
	"context"
	"time"
)

// DefaultType is the account classification assigned when none is given.
// Matches the schema default for "user".type.
const DefaultType = 2

// User is gate's canonical account record.
//
// PasswordHash is populated only on the GetByName path; every other
// operation returns it empty.
type User struct {
	ID           string
	Name         string
	PasswordHash string
	Type         int

	CreatedAt  time.Time
	DisabledAt *time.Time
}

// Disabled reports whether the account is inactive.
func (u User) Disabled() bool { return u.DisabledAt != nil }

// CreateInput describes an account creation request.
// Type <= 0 means DefaultType. A zero Now means time.Now().UTC().
type CreateInput struct {
	Name     string
	Password string
	Type     int
	Now      time.Time
}

// Hasher derives the stored password hash. Implemented by password.Config.
type Hasher interface {
	Hash(password string) (string, error)
}

// Store is the account persistence boundary.
//
// Implementations must guarantee that Create is atomic against concurrent
// creators of the same name: exactly one succeeds, the rest observe
// ErrDuplicateName.
type Store interface {
	// Create hashes the password and inserts the account. The returned
	// record never carries the password hash.
	Create(ctx context.Context, in CreateInput) (User, error)

	// GetByName loads an account by exact name, including the password hash.
	GetByName(ctx context.Context, name string) (User, error)

	// GetByID loads an account by id, excluding the password hash.
	GetByID(ctx context.Context, id string) (User, error)

	// Disable marks the account inactive. Idempotent: the first disable
	// timestamp wins and repeated calls are not an error.
	Disable(ctx context.Context, id string, now time.Time) error
}
