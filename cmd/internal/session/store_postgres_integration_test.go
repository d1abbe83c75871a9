package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gate/cmd/internal/ids"
)

// Integration tests are enabled when GATE_DATABASE_URL is set.
// They expect the migrations under migrations/ to have been applied.

func mustPGXPool(ctx context.Context, t *testing.T, dbURL string) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres unreachable; skipping: %v", err)
	}
	return pool
}

// mustCreateUser inserts a bare user row so session FKs hold.
func mustCreateUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, userID string) {
	t.Helper()

	_, err := pool.Exec(ctx, `
		INSERT INTO "gate"."user" (id, name, password, type, created_at)
		VALUES ($1, $2, 'x', 2, now())
	`, userID, "it-sess-"+userID)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func cleanupUserData(ctx context.Context, t *testing.T, pool *pgxpool.Pool, userID string) {
	t.Helper()
	// Sessions cascade with the user row.
	if _, err := pool.Exec(ctx, `DELETE FROM "gate"."user" WHERE id = $1`, userID); err != nil {
		t.Logf("cleanup: %v", err)
	}
}

func newULID(t *testing.T) string {
	t.Helper()
	id, err := ids.NewULID(time.Now().UTC())
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	return id
}

func TestPostgresSession_CreateAndGetActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbURL := os.Getenv("GATE_DATABASE_URL")
	if dbURL == "" {
		t.Skip("GATE_DATABASE_URL is not set; skipping Postgres integration test")
	}

	pool := mustPGXPool(ctx, t, dbURL)
	defer pool.Close()

	st, err := NewPostgresStore(pool, DefaultConfig())
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}

	userID := newULID(t)
	mustCreateUser(ctx, t, pool, userID)
	t.Cleanup(func() { cleanupUserData(ctx, t, pool, userID) })

	now := time.Now().UTC()
	sess, err := st.Create(ctx, CreateInput{
		UserID:    userID,
		UserAgent: strPtr("gate-test/1.0"),
		IPAddress: strPtr("192.0.2.10"),
		Now:       now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Fatalf("expected 64-char token, got %d chars", len(sess.Token))
	}

	got, err := st.GetActiveByToken(ctx, sess.Token, now.Add(time.Second))
	if err != nil {
		t.Fatalf("GetActiveByToken: %v", err)
	}
	if got.ID != sess.ID || got.UserID != userID {
		t.Fatalf("unexpected session: %+v", got)
	}

	// Revoked sessions must not come back as active.
	if err := st.Revoke(ctx, now.Add(2*time.Second), sess.Token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := st.GetActiveByToken(ctx, sess.Token, now.Add(3*time.Second)); !IsNotFound(err) {
		t.Fatalf("expected ErrSessionNotFound after revoke, got %v", err)
	}
}

func TestPostgresSession_RevokeAllForUser_Exclude(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbURL := os.Getenv("GATE_DATABASE_URL")
	if dbURL == "" {
		t.Skip("GATE_DATABASE_URL is not set; skipping Postgres integration test")
	}

	pool := mustPGXPool(ctx, t, dbURL)
	defer pool.Close()

	st, err := NewPostgresStore(pool, DefaultConfig())
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}

	userID := newULID(t)
	mustCreateUser(ctx, t, pool, userID)
	t.Cleanup(func() { cleanupUserData(ctx, t, pool, userID) })

	otherID := newULID(t)
	mustCreateUser(ctx, t, pool, otherID)
	t.Cleanup(func() { cleanupUserData(ctx, t, pool, otherID) })

	now := time.Now().UTC()

	var keep Session
	for i := range 3 {
		sess, err := st.Create(ctx, CreateInput{UserID: userID, Now: now.Add(time.Duration(i) * time.Second)})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if i == 2 {
			keep = sess
		}
	}
	otherSess, err := st.Create(ctx, CreateInput{UserID: otherID, Now: now})
	if err != nil {
		t.Fatalf("Create(other): %v", err)
	}

	if err := st.RevokeAllForUser(ctx, now.Add(time.Minute), userID, &keep.Token); err != nil {
		t.Fatalf("RevokeAllForUser: %v", err)
	}

	list, err := st.ListForUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Fatalf("list not ordered newest first")
		}
	}
	for _, sess := range list {
		if sess.Token == keep.Token {
			if sess.RevokedAt != nil {
				t.Fatalf("excluded session must stay active")
			}
			continue
		}
		if sess.RevokedAt == nil {
			t.Fatalf("expected session %s revoked", sess.ID)
		}
	}

	if _, err := st.GetActiveByToken(ctx, otherSess.Token, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("other user's session must stay active: %v", err)
	}
}
