package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gate/cmd/internal/ids"
	"gate/cmd/security/token"
)

// PostgresStore implements Store over PostgreSQL ("user_session").
//
// The pgx pool is owned by the caller; this store must NOT close it.
// Revocation is expressed as COALESCE(revoked_at, $now) so concurrent
// revokes of the same session both succeed and the first timestamp wins.
type PostgresStore struct {
	pool   *pgxpool.Pool
	cfg    Config
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the session store (default "gate").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" || !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("session: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool, cfg Config, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		cfg:    cfg,
		schema: "gate",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *PostgresStore) table() string {
	return fmt.Sprintf("%q.%q", s.schema, "user_session")
}

const sessionColumns = `id, user_id, token, user_agent, ip_address, created_at, expires_at, revoked_at`

// Create generates a token, computes the expiry and inserts the row.
func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Session, error) {
	const op = "Create"

	if strings.TrimSpace(in.UserID) == "" {
		return Session{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tok, err := token.NewHex(s.cfg.TokenBytes)
	if err != nil {
		return Session{}, StoreError{Op: op, Err: err}
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return Session{}, StoreError{Op: op, Err: err}
	}

	sess := Session{
		ID:        id,
		UserID:    in.UserID,
		Token:     tok,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO `+s.table()+` (
			id, user_id, token, user_agent, ip_address,
			created_at, expires_at, revoked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
	`, sess.ID, sess.UserID, sess.Token, sess.UserAgent, sess.IPAddress, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		return Session{}, StoreError{Op: op, Err: err}
	}

	return sess, nil
}

// GetActiveByToken loads a session by token, filtering out expired and
// revoked rows in the query itself.
func (s *PostgresStore) GetActiveByToken(ctx context.Context, tok string, now time.Time) (Session, error) {
	const op = "GetActiveByToken"

	if tok == "" {
		return Session{}, ErrSessionNotFound
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var row Session
	err := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM `+s.table()+`
		WHERE token = $1
		  AND expires_at > $2
		  AND revoked_at IS NULL
	`, tok, now).Scan(
		&row.ID,
		&row.UserID,
		&row.Token,
		&row.UserAgent,
		&row.IPAddress,
		&row.CreatedAt,
		&row.ExpiresAt,
		&row.RevokedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, StoreError{Op: op, Err: err}
	}

	return row, nil
}

// Revoke revokes the session holding token (idempotent).
func (s *PostgresStore) Revoke(ctx context.Context, now time.Time, tok string) error {
	const op = "Revoke"

	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET revoked_at = COALESCE(revoked_at, $2)
		WHERE token = $1
	`, tok, now)
	if err != nil {
		return StoreError{Op: op, Err: err}
	}
	return nil
}

// RevokeByID revokes a single session by id (idempotent).
func (s *PostgresStore) RevokeByID(ctx context.Context, now time.Time, sessionID string) error {
	const op = "RevokeByID"

	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET revoked_at = COALESCE(revoked_at, $2)
		WHERE id = $1
	`, sessionID, now)
	if err != nil {
		return StoreError{Op: op, Err: err}
	}
	return nil
}

// RevokeAllForUser revokes every non-excluded session of the user in one
// statement. The predicate is scoped by user_id, so other users' sessions
// are never touched.
func (s *PostgresStore) RevokeAllForUser(ctx context.Context, now time.Time, userID string, excludeToken *string) error {
	const op = "RevokeAllForUser"

	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET revoked_at = COALESCE(revoked_at, $2)
		WHERE user_id = $1
		  AND ($3::text IS NULL OR token <> $3)
	`, userID, now, excludeToken)
	if err != nil {
		return StoreError{Op: op, Err: err}
	}
	return nil
}

// ListForUser returns all sessions of the user, newest first.
func (s *PostgresStore) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	const op = "ListForUser"

	rows, err := s.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM `+s.table()+`
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, StoreError{Op: op, Err: err}
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var row Session
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Token,
			&row.UserAgent,
			&row.IPAddress,
			&row.CreatedAt,
			&row.ExpiresAt,
			&row.RevokedAt,
		); err != nil {
			return nil, StoreError{Op: op, Err: err}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, StoreError{Op: op, Err: err}
	}

	return out, nil
}
