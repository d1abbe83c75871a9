package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gate/cmd/internal/ids"
)

// MemoryStore is a dev-only fallback when the database is not configured.
// It is safe for concurrent use; the mutex is never held across hashing.
type MemoryStore struct {
	hasher Hasher

	mu     sync.Mutex
	byID   map[string]User
	byName map[string]string // name -> id
}

// NewMemoryStore constructs an in-memory Store implementation.
func NewMemoryStore(hasher Hasher) (*MemoryStore, error) {
	if hasher == nil {
		return nil, fmt.Errorf("user: nil hasher")
	}
	return &MemoryStore{
		hasher: hasher,
		byID:   make(map[string]User),
		byName: make(map[string]string),
	}, nil
}

// Create hashes the password and inserts the account.
// The name check and insert happen under one lock, so concurrent creators
// of the same name serialize: exactly one succeeds.
func (s *MemoryStore) Create(ctx context.Context, in CreateInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Password == "" {
		return User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	typ := in.Type
	if typ <= 0 {
		typ = DefaultType
	}

	// Hash outside the lock; it is the expensive part.
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, err
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return User{}, StoreError{Op: "Create", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[name]; exists {
		return User{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	u := User{
		ID:           id,
		Name:         name,
		PasswordHash: hash,
		Type:         typ,
		CreatedAt:    now,
	}
	s.byID[id] = u
	s.byName[name] = id

	out := u
	out.PasswordHash = ""
	return out, nil
}

// GetByName loads an account by exact name, including the password hash.
func (s *MemoryStore) GetByName(ctx context.Context, name string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[name]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.byID[id], nil
}

// GetByID loads an account by id, excluding the password hash.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.PasswordHash = ""
	return u, nil
}

// Disable marks the account inactive (idempotent).
func (s *MemoryStore) Disable(ctx context.Context, id string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil
	}
	if u.DisabledAt == nil {
		t := now
		u.DisabledAt = &t
		s.byID[id] = u
	}
	return nil
}
