package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gate/cmd/internal/ids"
)

// PostgresStore implements Store over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema/table identifiers are quoted to keep the reserved word "user" safe.
// - Create runs the existence check and insert in one ReadCommitted
//   transaction, with the unique constraint on name as the last line of
//   defense against concurrent creators.
type PostgresStore struct {
	pool   *pgxpool.Pool
	hasher Hasher
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the user store (default "gate").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" || !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("user: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, hasher Hasher, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		hasher: hasher,
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
		return nil, fmt.Errorf("user: nil pool")
	}
	if st.hasher == nil {
		return nil, fmt.Errorf("user: nil hasher")
	}
	return st, nil
}

func (s *PostgresStore) table() string {
	return fmt.Sprintf("%q.%q", s.schema, "user")
}

// Create inserts a new account inside a single transaction.
func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (User, error) {
	const op = "Create"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Password == "" {
		return User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	typ := in.Type
	if typ <= 0 {
		typ = DefaultType
	}

	// Hash before opening the transaction: hashing is CPU-expensive and
	// must not run while holding a connection mid-transaction.
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, err
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return User{}, StoreError{Op: op, Err: err}
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return User{}, StoreError{Op: op, Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var existing string
	err = tx.QueryRow(ctx,
		`SELECT id FROM `+s.table()+` WHERE name = $1`,
		name,
	).Scan(&existing)
	switch {
	case err == nil:
		return User{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	case errors.Is(err, pgx.ErrNoRows):
		// Free to insert.
	default:
		return User{}, StoreError{Op: op, Err: err}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO `+s.table()+` (id, name, password, type, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, name, hash, typ, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		return User{}, StoreError{Op: op, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, StoreError{Op: op, Err: err}
	}

	return User{
		ID:        id,
		Name:      name,
		Type:      typ,
		CreatedAt: now,
	}, nil
}

// GetByName loads an account by exact name, including the password hash.
func (s *PostgresStore) GetByName(ctx context.Context, name string) (User, error) {
	const op = "GetByName"

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, password, type, created_at, disabled_at
		 FROM `+s.table()+`
		 WHERE name = $1`,
		name,
	).Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Type, &u.CreatedAt, &u.DisabledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, StoreError{Op: op, Err: err}
	}
	return u, nil
}

// GetByID loads an account by id, excluding the password hash.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	const op = "GetByID"

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, type, created_at, disabled_at
		 FROM `+s.table()+`
		 WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Type, &u.CreatedAt, &u.DisabledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, StoreError{Op: op, Err: err}
	}
	return u, nil
}

// Disable marks the account inactive (idempotent, first timestamp wins).
func (s *PostgresStore) Disable(ctx context.Context, id string, now time.Time) error {
	const op = "Disable"

	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE `+s.table()+`
		 SET disabled_at = COALESCE(disabled_at, $2)
		 WHERE id = $1`,
		id, now,
	)
	if err != nil {
		return StoreError{Op: op, Err: err}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
