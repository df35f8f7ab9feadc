package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/Disha/internal/models"
	"github.com/soaringjerry/Disha/internal/platform/logger"
)

// SessionStore persists quiz sessions. Get returns nil, nil for unknown ids;
// Update and Delete report false when the id does not exist.
type SessionStore interface {
	CreateSession(ctx context.Context, s *models.Session) (*models.Session, error)
	UpdateSession(ctx context.Context, s *models.Session) (bool, error)
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	ListSessions(ctx context.Context, status models.Status) ([]*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) (bool, error)
	CountSessions(ctx context.Context, dayStart time.Time) (models.Counts, error)
}

// AuditStore records administrative actions.
type AuditStore interface {
	AddAudit(ctx context.Context, e models.AuditEntry) error
	ListAudit(ctx context.Context) ([]models.AuditEntry, error)
}

// ErrDuplicateSession is returned by stores when a session id already exists.
var ErrDuplicateSession = errors.New("duplicate session id")

// ClientInfo is the request provenance captured at registration.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// CompleteRequest carries a finished quiz submission.
type CompleteRequest struct {
	SessionID    string
	Profile      models.Profile
	Answers      map[string]string
	Scores       models.Scores
	TopThreeCode string
	TimeTaken    int
	CompletedAt  *time.Time
	Client       ClientInfo
}

// CompleteResult reports how a completion was persisted.
type CompleteResult struct {
	Session *models.Session
	// Created is true when the submission took the fallback insert path.
	Created bool
}

// SessionService drives a session from registration to completion and exposes
// the administrative queries.
type SessionService struct {
	store SessionStore
	audit AuditStore
	log   *logger.Logger
	now   func() time.Time
	idGen func(now time.Time) string
}

func NewSessionService(store SessionStore, audit AuditStore, log *logger.Logger) *SessionService {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionService{
		store: store,
		audit: audit,
		log:   log.With("service", "SessionService"),
		now:   func() time.Time { return time.Now().UTC() },
		idGen: defaultSessionID,
	}
}

// Session ids are a UTC timestamp plus 12 random hex characters.
func defaultSessionID(now time.Time) string {
	return now.Format("20060102150405") + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// Register stores a new incomplete session and returns its id.
func (s *SessionService) Register(ctx context.Context, profile models.Profile, client ClientInfo) (string, error) {
	profile, err := normalizeProfile(profile)
	if err != nil {
		return "", err
	}
	if profile.FullName == "" {
		return "", NewInvalidError("full_name required")
	}
	now := s.now()
	for attempt := 0; attempt < 3; attempt++ {
		sess := &models.Session{
			SessionID: s.idGen(now),
			Profile:   profile,
			Status:    models.StatusIncomplete,
			StartedAt: now,
			UserAgent: strings.TrimSpace(client.UserAgent),
			IPAddress: strings.TrimSpace(client.IPAddress),
		}
		if _, err := s.store.CreateSession(ctx, sess); err != nil {
			if errors.Is(err, ErrDuplicateSession) {
				continue
			}
			return "", storageErr("register session", err)
		}
		s.log.Info("session registered", "session_id", sess.SessionID, "education", profile.Education)
		return sess.SessionID, nil
	}
	return "", storageErr("register session", ErrDuplicateSession)
}

// Complete finalises a session. A known session id is updated in place; an
// absent or unknown id takes the fallback path and inserts a new complete row
// from the supplied profile. Repeated completions overwrite (last write wins).
func (s *SessionService) Complete(ctx context.Context, req CompleteRequest) (*CompleteResult, error) {
	if len(req.Answers) == 0 && len(req.Scores) == 0 {
		return nil, NewInvalidError("answers or scores required")
	}
	if req.TimeTaken < 0 {
		return nil, NewInvalidError("time_taken must be non-negative")
	}
	normalized, err := NormalizeScores(req.Scores)
	if err != nil {
		return nil, err
	}
	scores := ClampScores(normalized)
	if len(req.Scores) == 0 {
		scores = Tally(req.Answers)
	}
	code := TopThree(Rank(scores))
	if sent := strings.ToUpper(strings.TrimSpace(req.TopThreeCode)); sent != "" && sent != code {
		s.log.Warn("client top-three code disagrees with scores", "session_id", req.SessionID, "client_code", sent, "code", code)
	}
	completedAt := s.now()
	if req.CompletedAt != nil && !req.CompletedAt.IsZero() {
		completedAt = req.CompletedAt.UTC()
	}
	answers := req.Answers
	if answers == nil {
		answers = map[string]string{}
	}

	if id := strings.TrimSpace(req.SessionID); id != "" {
		existing, err := s.store.GetSession(ctx, id)
		if err != nil {
			return nil, storageErr("load session", err)
		}
		if existing != nil {
			existing.Answers = answers
			existing.Scores = scores
			existing.TopThreeCode = code
			existing.TimeTaken = req.TimeTaken
			existing.Status = models.StatusComplete
			existing.CompletedAt = &completedAt
			ok, err := s.store.UpdateSession(ctx, existing)
			if err != nil {
				return nil, storageErr("complete session", err)
			}
			if ok {
				s.log.Info("session completed", "session_id", id, "code", code)
				return &CompleteResult{Session: existing}, nil
			}
			// Deleted between read and write; fall through to insert.
		}
	}

	profile, err := normalizeProfile(req.Profile)
	if err != nil {
		return nil, err
	}
	sess := &models.Session{
		SessionID:    s.idGen(completedAt),
		Profile:      profile,
		Status:       models.StatusComplete,
		Answers:      answers,
		Scores:       scores,
		TopThreeCode: code,
		TimeTaken:    req.TimeTaken,
		StartedAt:    completedAt,
		CompletedAt:  &completedAt,
		UserAgent:    strings.TrimSpace(req.Client.UserAgent),
		IPAddress:    strings.TrimSpace(req.Client.IPAddress),
	}
	stored, err := s.store.CreateSession(ctx, sess)
	if err != nil {
		return nil, storageErr("insert completed session", err)
	}
	if stored != nil {
		sess = stored
	}
	s.log.Warn("completion without a known session, inserted new row", "requested_session_id", req.SessionID, "session_id", sess.SessionID)
	return &CompleteResult{Session: sess, Created: true}, nil
}

// Get returns a session or a not-found error.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, NewInvalidError("session_id required")
	}
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, storageErr("get session", err)
	}
	if sess == nil {
		return nil, NewNotFoundError("session not found")
	}
	return sess, nil
}

// List returns sessions, optionally filtered by status ("" for all).
func (s *SessionService) List(ctx context.Context, status string) ([]*models.Session, error) {
	st := models.Status(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, NewInvalidError("status must be complete or incomplete")
	}
	out, err := s.store.ListSessions(ctx, st)
	if err != nil {
		return nil, storageErr("list sessions", err)
	}
	return out, nil
}

// Delete purges a session. actor is recorded in the audit log.
func (s *SessionService) Delete(ctx context.Context, id, actor string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewInvalidError("session_id required")
	}
	ok, err := s.store.DeleteSession(ctx, id)
	if err != nil {
		return storageErr("delete session", err)
	}
	if !ok {
		return NewNotFoundError("session not found")
	}
	s.recordAudit(ctx, models.AuditEntry{Time: s.now(), Actor: actor, Action: "delete_session", Target: id})
	return nil
}

// Counts returns total, complete, incomplete and started-today totals.
func (s *SessionService) Counts(ctx context.Context) (models.Counts, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	c, err := s.store.CountSessions(ctx, dayStart)
	if err != nil {
		return models.Counts{}, storageErr("count sessions", err)
	}
	return c, nil
}

func (s *SessionService) recordAudit(ctx context.Context, e models.AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.AddAudit(ctx, e); err != nil {
		s.log.Warn("audit write failed", "action", e.Action, "error", err)
	}
}

func normalizeProfile(p models.Profile) (models.Profile, error) {
	p.FullName = strings.Join(strings.Fields(p.FullName), " ")
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))
	p.Education = strings.TrimSpace(p.Education)
	p.Occupation = strings.TrimSpace(p.Occupation)
	p.Location = strings.TrimSpace(p.Location)
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return p, NewInvalidError("invalid email")
		}
	}
	if p.Age != 0 && (p.Age < 10 || p.Age > 100) {
		return p, NewInvalidError("age must be between 10 and 100")
	}
	return p, nil
}
