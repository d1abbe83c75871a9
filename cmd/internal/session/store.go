package session

import (
	"context"
	"time"
)

// Session mirrors a "user_session" row.
//
// IMPORTANT: Token is the plaintext credential. It is returned to the
// caller exactly once (from Create) and must never be logged.
type Session struct {
	ID     string
	UserID string
	Token  string

	UserAgent *string
	IPAddress *string

	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// ActiveAt reports whether the session is active at the given instant:
// not revoked and not past expiry.
func (s Session) ActiveAt(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// CreateInput creates a session for an authenticated user.
// A zero Now means time.Now().UTC().
type CreateInput struct {
	UserID    string
	UserAgent *string
	IPAddress *string
	Now       time.Time
}

// Store is the session persistence boundary.
//
// Rows are never mutated except to set revoked_at, and that transition is
// one-way: implementations must keep the first revocation timestamp under
// concurrent revokes.
type Store interface {
	// Create generates a fresh opaque token, computes the expiry and
	// inserts the row. The returned Session includes the plaintext token.
	Create(ctx context.Context, in CreateInput) (Session, error)

	// GetActiveByToken matches token AND expires_at > now AND
	// revoked_at IS NULL in a single lookup; anything else is
	// ErrSessionNotFound.
	GetActiveByToken(ctx context.Context, token string, now time.Time) (Session, error)

	// Revoke revokes the session holding token. No-op if already revoked
	// or absent.
	Revoke(ctx context.Context, now time.Time, token string) error

	// RevokeByID revokes a single session by id (same idempotency).
	RevokeByID(ctx context.Context, now time.Time, sessionID string) error

	// RevokeAllForUser revokes every session of the user in one statement,
	// optionally keeping the session holding excludeToken alive.
	RevokeAllForUser(ctx context.Context, now time.Time, userID string, excludeToken *string) error

	// ListForUser returns all sessions of the user, newest first.
	ListForUser(ctx context.Context, userID string) ([]Session, error)
}
