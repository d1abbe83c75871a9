package auth

import (
	"context"
	"log/slog"
	"time"

	"gate/cmd/internal/session"
	"gate/cmd/internal/user"
)

// Hasher is the credential hashing boundary. Implemented by password.Config.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) (bool, error)
}

// Service implements the high-level authentication operations for gate.
//
// All methods are safe for concurrent use; every call reads the stores'
// current committed state.
type Service struct {
	log      *slog.Logger
	users    user.Store
	sessions session.Store
	hasher   Hasher

	// dummyHash equalizes login timing between "user not found" and
	// "wrong password": when the lookup misses, a verify still runs.
	dummyHash string
}

// LoginInput carries the credentials and client provenance for Login.
type LoginInput struct {
	Username  string
	Password  string
	UserAgent *string
	IPAddress *string
}

// LoginResult is returned on successful login. Token is the plaintext
// session token; this is the only place it is handed out.
type LoginResult struct {
	UserID    string
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// Validation is the outcome of a session check. Session is set only when
// IsValid is true.
type Validation struct {
	IsValid bool
	Session *session.Session
}

// SessionInfo is a user-facing view of one session for session management.
// IsActive is recomputed at call time, never stored.
type SessionInfo struct {
	SessionID string
	UserAgent *string
	IPAddress *string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsCurrent bool
	IsActive  bool
}

// NewService constructs a Service over the given stores and hasher.
func NewService(log *slog.Logger, users user.Store, sessions session.Store, hasher Hasher) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		log:      log,
		users:    users,
		sessions: sessions,
		hasher:   hasher,
	}

	// Best effort: without the dummy hash, a missing user is still rejected,
	// just without the timing equalization.
	if hash, err := hasher.Hash("dummy-password-for-timing-only"); err == nil {
		s.dummyHash = hash
	} else {
		log.Warn("auth.dummy_hash.fail", "err", err)
	}

	return s
}

// Login verifies credentials and issues a new session.
//
// Unknown username and wrong password both return ErrInvalidCredentials.
// A disabled account returns ErrAccountDisabled even for a correct
// password. Store failures propagate wrapped.
func (s *Service) Login(ctx context.Context, now time.Time, in LoginInput) (LoginResult, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	u, err := s.users.GetByName(ctx, in.Username)
	if err != nil {
		if user.IsNotFound(err) {
			if s.dummyHash != "" {
				_, _ = s.hasher.Verify(s.dummyHash, in.Password)
			}
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if u.Disabled() {
		return LoginResult{}, ErrAccountDisabled
	}

	ok, err := s.hasher.Verify(u.PasswordHash, in.Password)
	if err != nil {
		// Fail closed: a malformed stored hash rejects the login.
		s.log.Error("auth.login.verify.fail", "user_id", u.ID, "err", err)
		return LoginResult{}, ErrInvalidCredentials
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, session.CreateInput{
		UserID:    u.ID,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		Now:       now,
	})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		UserID:    u.ID,
		SessionID: sess.ID,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Logout revokes the session holding token. Idempotent: logging out a
// token twice, or an unknown token, is not an error.
func (s *Service) Logout(ctx context.Context, now time.Time, token string) error {
	return s.sessions.Revoke(ctx, now, token)
}

// ValidateSession is the authorization check behind every protected
// request. Missing, expired and revoked tokens all yield IsValid=false;
// only store failures surface as errors.
func (s *Service) ValidateSession(ctx context.Context, now time.Time, token string) (Validation, error) {
	if token == "" {
		return Validation{}, nil
	}

	sess, err := s.sessions.GetActiveByToken(ctx, token, now)
	if err != nil {
		if session.IsNotFound(err) {
			return Validation{}, nil
		}
		return Validation{}, err
	}

	return Validation{IsValid: true, Session: &sess}, nil
}

// UserSessions lists the user's sessions newest first, flagging the
// current one and recomputing activity at call time.
func (s *Service) UserSessions(ctx context.Context, now time.Time, userID, currentSessionID string) ([]SessionInfo, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rows, err := s.sessions.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SessionInfo, 0, len(rows))
	for _, row := range rows {
		out = append(out, SessionInfo{
			SessionID: row.ID,
			UserAgent: row.UserAgent,
			IPAddress: row.IPAddress,
			CreatedAt: row.CreatedAt,
			ExpiresAt: row.ExpiresAt,
			IsCurrent: row.ID == currentSessionID,
			IsActive:  row.ActiveAt(now),
		})
	}
	return out, nil
}

// RevokeSession revokes a single session by id.
//
// Ownership contract: the HTTP layer must confirm the session belongs to
// the requesting user (via UserSessions) before calling; this method does
// not re-check ownership.
func (s *Service) RevokeSession(ctx context.Context, now time.Time, sessionID string) error {
	return s.sessions.RevokeByID(ctx, now, sessionID)
}

// RevokeAllSessions revokes every session of the user ("log out
// everywhere"). A non-nil excludeToken keeps the session that issued the
// request alive.
func (s *Service) RevokeAllSessions(ctx context.Context, now time.Time, userID string, excludeToken *string) error {
	return s.sessions.RevokeAllForUser(ctx, now, userID, excludeToken)
}
