package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type authCtxKey int

const authKey authCtxKey = 7

const issuer = "disha"

// Claims identify an admin token. ID (jti) is the key checked against the
// live token set.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenValidator reports whether a token id is still live.
type TokenValidator interface {
	Valid(ctx context.Context, tokenID string) (bool, error)
}

// TokenAuth signs and verifies HS256 admin tokens.
type TokenAuth struct {
	secret []byte
	now    func() time.Time
}

func NewTokenAuth(secret string) *TokenAuth {
	if secret == "" {
		secret = "disha-dev-secret"
	}
	return &TokenAuth{secret: []byte(secret), now: time.Now}
}

// SignToken issues a token for subject with jti tokenID.
func (a *TokenAuth) SignToken(subject, tokenID string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *TokenAuth) ParseToken(tok string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.ID != "" {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// RequireAdmin rejects requests without a valid, unrevoked bearer token and
// stores the claims in the request context.
func (a *TokenAuth) RequireAdmin(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeAuthError(w, "missing bearer token")
				return
			}
			c, err := a.ParseToken(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
			if err != nil {
				writeAuthError(w, "invalid token")
				return
			}
			if v != nil {
				ok, err := v.Valid(r.Context(), c.ID)
				if err != nil {
					writeError(w, http.StatusInternalServerError, "internal", "internal error")
					return
				}
				if !ok {
					writeAuthError(w, "token revoked or expired")
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authKey, c)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, "unauthorized", msg)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"code": code, "message": msg}})
}

// ClaimsFromContext returns the admin claims attached by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(authKey).(*Claims)
	return c, ok
}

// ActorFromContext names the admin for audit entries.
func ActorFromContext(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok && c.Subject != "" {
		return c.Subject
	}
	return "unknown"
}
