package authapi

import "context"

// Identity is the authenticated caller attached to a request after the
// session cookie has been validated.
type Identity struct {
	UserID    string
	SessionID string
	Token     string
}

type ctxKey int

const identityKey ctxKey = 0

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the authenticated identity, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
