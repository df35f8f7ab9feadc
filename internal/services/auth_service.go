package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/soaringjerry/Disha/internal/models"
	"github.com/soaringjerry/Disha/internal/platform/logger"
)

// DefaultTokenTTL is how long an admin token stays valid.
const DefaultTokenTTL = 12 * time.Hour

// TokenStore holds the ids of live admin tokens. Entries expire after ttl.
type TokenStore interface {
	Put(ctx context.Context, id string, ttl time.Duration) error
	Valid(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
}

// TokenSigner issues a signed token carrying subject and token id.
type TokenSigner func(subject, tokenID string, ttl time.Duration) (string, error)

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService checks the single admin credential and manages the token set.
type AuthService struct {
	username     string
	passwordHash []byte
	tokens       TokenStore
	signToken    TokenSigner
	audit        AuditStore
	log          *logger.Logger
	now          func() time.Time
	idGen        func() string
	tokenTTL     time.Duration
}

func NewAuthService(username string, passwordHash []byte, tokens TokenStore, signer TokenSigner, audit AuditStore, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{
		username:     strings.TrimSpace(username),
		passwordHash: passwordHash,
		tokens:       tokens,
		signToken:    signer,
		audit:        audit,
		log:          log.With("service", "AuthService"),
		now:          func() time.Time { return time.Now().UTC() },
		idGen:        uuid.NewString,
		tokenTTL:     DefaultTokenTTL,
	}
}

// SetTokenTTL overrides the default token lifetime.
func (s *AuthService) SetTokenTTL(ttl time.Duration) {
	if ttl > 0 {
		s.tokenTTL = ttl
	}
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// HashPassword bcrypt-hashes a plain password. Values that already look like
// a bcrypt hash are returned unchanged.
func HashPassword(password string) ([]byte, error) {
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		return []byte(password), nil
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("username/password required")
	}
	if len(s.passwordHash) == 0 || s.username == "" {
		return nil, NewForbiddenError("admin login disabled")
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		s.log.Warn("admin login rejected", "username", username)
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil || s.tokens == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	id := s.idGen()
	token, err := s.signToken(s.username, id, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.tokens.Put(ctx, id, s.tokenTTL); err != nil {
		return nil, storageErr("store token", err)
	}
	now := s.now()
	s.record(ctx, models.AuditEntry{Time: now, Actor: s.username, Action: "login", Target: "admin"})
	return &AuthResult{Token: token, ExpiresAt: now.Add(s.tokenTTL)}, nil
}

// Logout revokes the token id. Revoking an unknown id is not an error.
func (s *AuthService) Logout(ctx context.Context, tokenID, actor string) error {
	if strings.TrimSpace(tokenID) == "" {
		return NewUnauthorizedError("missing token")
	}
	if err := s.tokens.Revoke(ctx, tokenID); err != nil {
		return storageErr("revoke token", err)
	}
	s.record(ctx, models.AuditEntry{Time: s.now(), Actor: actor, Action: "logout", Target: "admin"})
	return nil
}

// Valid reports whether tokenID is still in the live set.
func (s *AuthService) Valid(ctx context.Context, tokenID string) (bool, error) {
	if s.tokens == nil || tokenID == "" {
		return false, nil
	}
	return s.tokens.Valid(ctx, tokenID)
}

// Audit lists recorded admin actions, oldest first.
func (s *AuthService) Audit(ctx context.Context) ([]models.AuditEntry, error) {
	if s.audit == nil {
		return []models.AuditEntry{}, nil
	}
	entries, err := s.audit.ListAudit(ctx)
	if err != nil {
		return nil, storageErr("list audit", err)
	}
	return entries, nil
}

func (s *AuthService) record(ctx context.Context, e models.AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.AddAudit(ctx, e); err != nil {
		s.log.Warn("audit write failed", "action", e.Action, "error", err)
	}
}
