package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"gate/cmd/internal/session"
	"gate/cmd/internal/user"
	"gate/cmd/security/password"
)

func testHasher() password.Config {
	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc      *Service
	users    *user.MemoryStore
	sessions *session.MemoryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	hasher := testHasher()
	users, err := user.NewMemoryStore(hasher)
	if err != nil {
		t.Fatalf("NewMemoryStore(user): %v", err)
	}
	sessions, err := session.NewMemoryStore(session.DefaultConfig())
	if err != nil {
		t.Fatalf("NewMemoryStore(session): %v", err)
	}

	return fixture{
		svc:      NewService(testLogger(), users, sessions, hasher),
		users:    users,
		sessions: sessions,
	}
}

func mustCreateUser(t *testing.T, f fixture, name, pw string) user.User {
	t.Helper()

	u, err := f.users.Create(context.Background(), user.CreateInput{Name: name, Password: pw})
	if err != nil {
		t.Fatalf("create user %q: %v", name, err)
	}
	return u
}

func strPtr(s string) *string { return &s }

func TestLogin_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	alice := mustCreateUser(t, f, "alice", "pw12345678")

	res, err := f.svc.Login(ctx, now, LoginInput{
		Username:  "alice",
		Password:  "pw12345678",
		UserAgent: strPtr("gate-test/1.0"),
		IPAddress: strPtr("192.0.2.10"),
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.UserID != alice.ID || res.Token == "" || res.SessionID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	wantExp := now.Add(30 * 24 * time.Hour)
	if !res.ExpiresAt.Equal(wantExp) {
		t.Fatalf("expires_at=%v want=%v", res.ExpiresAt, wantExp)
	}

	v, err := f.svc.ValidateSession(ctx, now.Add(time.Second), res.Token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if !v.IsValid || v.Session == nil {
		t.Fatalf("expected valid session")
	}
	if v.Session.UserID != alice.ID {
		t.Fatalf("session user=%q want=%q", v.Session.UserID, alice.ID)
	}

	if err := f.svc.Logout(ctx, now.Add(2*time.Second), res.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	v, err = f.svc.ValidateSession(ctx, now.Add(3*time.Second), res.Token)
	if err != nil {
		t.Fatalf("ValidateSession after logout: %v", err)
	}
	if v.IsValid {
		t.Fatalf("expected invalid session after logout")
	}

	// Logout is idempotent.
	if err := f.svc.Logout(ctx, now.Add(4*time.Second), res.Token); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	bob := mustCreateUser(t, f, "bob", "pw12345678")

	// Wrong password and unknown user must be the same error kind.
	_, err := f.svc.Login(ctx, now, LoginInput{Username: "bob", Password: "wrongpassword"})
	if !IsInvalidCredentials(err) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	_, err = f.svc.Login(ctx, now, LoginInput{Username: "nobody", Password: "pw12345678"})
	if !IsInvalidCredentials(err) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}

	// Disabled account beats a correct password.
	if err := f.users.Disable(ctx, bob.ID, now); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	_, err = f.svc.Login(ctx, now, LoginInput{Username: "bob", Password: "pw12345678"})
	if !IsAccountDisabled(err) {
		t.Fatalf("disabled account: expected ErrAccountDisabled, got %v", err)
	}
}

func TestValidateSession_Invalid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	mustCreateUser(t, f, "carol", "pw12345678")
	res, err := f.svc.Login(ctx, now, LoginInput{Username: "carol", Password: "pw12345678"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Empty token.
	v, err := f.svc.ValidateSession(ctx, now, "")
	if err != nil || v.IsValid {
		t.Fatalf("empty token: expected invalid, got v=%+v err=%v", v, err)
	}

	// Unknown token.
	v, err = f.svc.ValidateSession(ctx, now, "deadbeef")
	if err != nil || v.IsValid {
		t.Fatalf("unknown token: expected invalid, got v=%+v err=%v", v, err)
	}

	// Expired token.
	v, err = f.svc.ValidateSession(ctx, res.ExpiresAt.Add(time.Second), res.Token)
	if err != nil || v.IsValid {
		t.Fatalf("expired token: expected invalid, got v=%+v err=%v", v, err)
	}
}

func TestUserSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	dave := mustCreateUser(t, f, "dave", "pw12345678")

	var results []LoginResult
	for i := range 3 {
		res, err := f.svc.Login(ctx, now.Add(time.Duration(i)*time.Second), LoginInput{
			Username:  "dave",
			Password:  "pw12345678",
			UserAgent: strPtr("gate-test/1.0"),
		})
		if err != nil {
			t.Fatalf("Login(%d): %v", i, err)
		}
		results = append(results, res)
	}
	current := results[2]

	// Revoke the oldest to exercise IsActive.
	if err := f.svc.Logout(ctx, now.Add(time.Minute), results[0].Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	infos, err := f.svc.UserSessions(ctx, now.Add(2*time.Minute), dave.ID, current.SessionID)
	if err != nil {
		t.Fatalf("UserSessions: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(infos))
	}

	// Newest first.
	if infos[0].SessionID != current.SessionID {
		t.Fatalf("expected newest session first, got %q", infos[0].SessionID)
	}
	if !infos[0].IsCurrent || infos[1].IsCurrent || infos[2].IsCurrent {
		t.Fatalf("IsCurrent flags wrong: %+v", infos)
	}
	if !infos[0].IsActive || !infos[1].IsActive {
		t.Fatalf("expected two active sessions")
	}
	if infos[2].IsActive {
		t.Fatalf("revoked session reported active")
	}
}

func TestRevokeSession_ByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	mustCreateUser(t, f, "erin", "pw12345678")
	res, err := f.svc.Login(ctx, now, LoginInput{Username: "erin", Password: "pw12345678"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := f.svc.RevokeSession(ctx, now.Add(time.Second), res.SessionID); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}

	v, err := f.svc.ValidateSession(ctx, now.Add(2*time.Second), res.Token)
	if err != nil || v.IsValid {
		t.Fatalf("expected invalid session after revoke, got v=%+v err=%v", v, err)
	}

	// Idempotent.
	if err := f.svc.RevokeSession(ctx, now.Add(3*time.Second), res.SessionID); err != nil {
		t.Fatalf("second RevokeSession: %v", err)
	}
}

func TestRevokeAllSessions_ExcludesCurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	frank := mustCreateUser(t, f, "frank", "pw12345678")

	var tokens []string
	for i := range 4 {
		res, err := f.svc.Login(ctx, now.Add(time.Duration(i)*time.Second), LoginInput{Username: "frank", Password: "pw12345678"})
		if err != nil {
			t.Fatalf("Login(%d): %v", i, err)
		}
		tokens = append(tokens, res.Token)
	}
	keep := tokens[3]

	if err := f.svc.RevokeAllSessions(ctx, now.Add(time.Minute), frank.ID, &keep); err != nil {
		t.Fatalf("RevokeAllSessions: %v", err)
	}

	for i, tok := range tokens {
		v, err := f.svc.ValidateSession(ctx, now.Add(2*time.Minute), tok)
		if err != nil {
			t.Fatalf("ValidateSession(%d): %v", i, err)
		}
		if tok == keep && !v.IsValid {
			t.Fatalf("excluded session must stay valid")
		}
		if tok != keep && v.IsValid {
			t.Fatalf("session %d must be revoked", i)
		}
	}
}

// failingSessions exercises store failure propagation.
type failingSessions struct {
	session.Store
	err error
}

func (f failingSessions) Create(_ context.Context, _ session.CreateInput) (session.Session, error) {
	return session.Session{}, f.err
}

func (f failingSessions) GetActiveByToken(_ context.Context, _ string, _ time.Time) (session.Session, error) {
	return session.Session{}, f.err
}

func TestStoreFailuresPropagate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	mustCreateUser(t, f, "grace", "pw12345678")

	storeErr := session.StoreError{Op: "Create", Err: errors.New("connection reset")}
	svc := NewService(testLogger(), f.users, failingSessions{err: storeErr}, testHasher())

	_, err := svc.Login(ctx, now, LoginInput{Username: "grace", Password: "pw12345678"})
	var se session.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError from Login, got %v", err)
	}

	if _, err := svc.ValidateSession(ctx, now, "sometoken"); !errors.As(err, &se) {
		t.Fatalf("expected StoreError from ValidateSession, got %v", err)
	}
}
