package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gate/cmd/internal/ids"
	"gate/cmd/security/token"
)

// MemoryStore is a dev-only fallback when the database is not configured.
// It is safe for concurrent use.
type MemoryStore struct {
	cfg Config

	mu      sync.Mutex
	byToken map[string]*Session
	byID    map[string]*Session
}

// NewMemoryStore constructs an in-memory Store implementation.
func NewMemoryStore(cfg Config) (*MemoryStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &MemoryStore{
		cfg:     cfg,
		byToken: make(map[string]*Session),
		byID:    make(map[string]*Session),
	}, nil
}

// Create generates a token, computes the expiry and stores the session.
func (s *MemoryStore) Create(ctx context.Context, in CreateInput) (Session, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return Session{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tok, err := token.NewHex(s.cfg.TokenBytes)
	if err != nil {
		return Session{}, StoreError{Op: "Create", Err: err}
	}
	id, err := ids.NewULID(now)
	if err != nil {
		return Session{}, StoreError{Op: "Create", Err: err}
	}

	sess := &Session{
		ID:        id,
		UserID:    in.UserID,
		Token:     tok,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}

	s.mu.Lock()
	s.byToken[tok] = sess
	s.byID[id] = sess
	s.mu.Unlock()

	return *sess, nil
}

// GetActiveByToken returns the session for token if it is still active.
func (s *MemoryStore) GetActiveByToken(ctx context.Context, tok string, now time.Time) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byToken[tok]
	if !ok || !sess.ActiveAt(now) {
		return Session{}, ErrSessionNotFound
	}
	return *sess, nil
}

// Revoke revokes the session holding token (idempotent).
func (s *MemoryStore) Revoke(ctx context.Context, now time.Time, tok string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.byToken[tok]; ok {
		revoke(sess, now)
	}
	return nil
}

// RevokeByID revokes a single session by id (idempotent).
func (s *MemoryStore) RevokeByID(ctx context.Context, now time.Time, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.byID[sessionID]; ok {
		revoke(sess, now)
	}
	return nil
}

// RevokeAllForUser revokes every non-excluded session of the user.
func (s *MemoryStore) RevokeAllForUser(ctx context.Context, now time.Time, userID string, excludeToken *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.byID {
		if sess.UserID != userID {
			continue
		}
		if excludeToken != nil && token.Equal(sess.Token, *excludeToken) {
			continue
		}
		revoke(sess, now)
	}
	return nil
}

// ListForUser returns all sessions of the user, newest first.
func (s *MemoryStore) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Session
	for _, sess := range s.byID {
		if sess.UserID == userID {
			out = append(out, *sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// revoke is one-way: the first revocation timestamp wins.
func revoke(sess *Session, now time.Time) {
	if sess.RevokedAt == nil {
		t := now
		sess.RevokedAt = &t
	}
}
