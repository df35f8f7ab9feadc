package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type setValidator map[string]bool

func (s setValidator) Valid(_ context.Context, id string) (bool, error) { return s[id], nil }

func adminHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ActorFromContext(r.Context())))
	})
}

func TestRequireAdmin(t *testing.T) {
	auth := NewTokenAuth("test-secret")
	live := setValidator{"jti-1": true}
	h := auth.RequireAdmin(live)(adminHandler())

	tok, err := auth.SignToken("admin", "jti-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	revoked, _ := auth.SignToken("admin", "jti-2", time.Hour)
	other, _ := NewTokenAuth("other-secret").SignToken("admin", "jti-1", time.Hour)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + tok, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"revoked", "Bearer " + revoked, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + other, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def", http.StatusUnauthorized},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != c.status {
			t.Fatalf("%s: status %d, want %d", c.name, rr.Code, c.status)
		}
		if c.status == http.StatusOK && rr.Body.String() != "admin" {
			t.Fatalf("%s: actor %q", c.name, rr.Body.String())
		}
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	auth := NewTokenAuth("test-secret")
	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _ := auth.SignToken("admin", "jti-1", time.Hour)
	auth.now = time.Now
	if _, err := auth.ParseToken(tok); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestClientInfoMiddleware(t *testing.T) {
	var got ClientInfo
	h := ClientInfoMiddleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientInfoFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	req.Header.Set("User-Agent", "quiz-test/1.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got.UserAgent != "quiz-test/1.0" || got.IPAddress != "203.0.113.7" {
		t.Fatalf("unexpected client info %+v", got)
	}

	h = ClientInfoMiddleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientInfoFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got.IPAddress != "10.0.0.2" {
		t.Fatalf("proxy headers must be ignored when untrusted, got %s", got.IPAddress)
	}
}

func TestLocaleMiddleware(t *testing.T) {
	var got string
	h := LocaleMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/types", nil)
	req.Header.Set("Accept-Language", "ne-NP,en;q=0.5")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "ne" {
		t.Fatalf("want ne, got %s", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://quiz.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("preflight must not reach handler")
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "https://quiz.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent || rr.Header().Get("Access-Control-Allow-Origin") != "https://quiz.example" {
		t.Fatalf("unexpected preflight response %d %v", rr.Code, rr.Header())
	}
}
