package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type stubTokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Duration
	err    error
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: map[string]time.Duration{}}
}

func (s *stubTokenStore) Put(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tokens[id] = ttl
	return nil
}

func (s *stubTokenStore) Valid(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[id]
	return ok, s.err
}

func (s *stubTokenStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
	return s.err
}

func newTestAuthService(t *testing.T) (*AuthService, *stubTokenStore, *stubSessionStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	tokens := newStubTokenStore()
	audit := newStubSessionStore()
	signer := func(subject, id string, ttl time.Duration) (string, error) {
		return subject + "." + id + "." + ttl.String(), nil
	}
	svc := NewAuthService("admin", hash, tokens, signer, audit, nil)
	svc.idGen = func() string { return "tok-1" }
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, tokens, audit
}

func TestLoginIssuesStoredToken(t *testing.T) {
	svc, tokens, audit := newTestAuthService(t)
	svc.SetTokenTTL(time.Hour)
	res, err := svc.Login(context.Background(), "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "admin.tok-1.1h0m0s" {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if want := time.Date(2025, 5, 1, 13, 0, 0, 0, time.UTC); !res.ExpiresAt.Equal(want) {
		t.Fatalf("expires_at %s, want %s", res.ExpiresAt, want)
	}
	if ttl, ok := tokens.tokens["tok-1"]; !ok || ttl != time.Hour {
		t.Fatalf("token not stored with ttl: %+v", tokens.tokens)
	}
	if ok, _ := svc.Valid(context.Background(), "tok-1"); !ok {
		t.Fatalf("token should be valid")
	}
	if len(audit.audit) != 1 || audit.audit[0].Action != "login" {
		t.Fatalf("login not audited: %+v", audit.audit)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, tokens, _ := newTestAuthService(t)
	cases := []struct{ user, pass string }{
		{"admin", "wrong"},
		{"root", "s3cret"},
	}
	for _, c := range cases {
		_, err := svc.Login(context.Background(), c.user, c.pass)
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorUnauthorized {
			t.Fatalf("%s/%s: expected unauthorized, got %v", c.user, c.pass, err)
		}
	}
	if _, err := svc.Login(context.Background(), "", ""); err == nil {
		t.Fatalf("expected invalid error for empty credentials")
	} else if se, _ := AsServiceError(err); se == nil || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid, got %v", err)
	}
	if len(tokens.tokens) != 0 {
		t.Fatalf("no token should be stored")
	}
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	svc := NewAuthService("admin", nil, newStubTokenStore(), nil, nil, nil)
	_, err := svc.Login(context.Background(), "admin", "anything")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestLoginTokenStoreFailure(t *testing.T) {
	svc, tokens, _ := newTestAuthService(t)
	tokens.err = errors.New("redis down")
	_, err := svc.Login(context.Background(), "admin", "s3cret")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestLogoutRevokes(t *testing.T) {
	svc, _, audit := newTestAuthService(t)
	if _, err := svc.Login(context.Background(), "admin", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), "tok-1", "admin"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if ok, _ := svc.Valid(context.Background(), "tok-1"); ok {
		t.Fatalf("token should be revoked")
	}
	entries, err := svc.Audit(context.Background())
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(entries) != 2 || entries[1].Action != "logout" || len(audit.audit) != 2 {
		t.Fatalf("unexpected audit: %+v", entries)
	}
}

func TestHashPasswordKeepsExistingHash(t *testing.T) {
	h, err := HashPassword("plain")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bcrypt.CompareHashAndPassword(h, []byte("plain")) != nil {
		t.Fatalf("hash does not verify")
	}
	again, err := HashPassword(string(h))
	if err != nil || string(again) != string(h) {
		t.Fatalf("existing hash should pass through: %v", err)
	}
}
