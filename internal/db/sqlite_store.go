package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/soaringjerry/Disha/internal/api"
	"github.com/soaringjerry/Disha/internal/models"
	"github.com/soaringjerry/Disha/internal/services"
)

// timeLayout is fixed width so stored timestamps compare as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sessionColumns = `id, session_id, full_name, email, phone, age, gender, education, occupation,
	location, answers, scores, top_three_code, time_taken, status, started_at, completed_at,
	user_agent, ip_address`

// SQLiteStore persists sessions and the audit log in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ api.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type sessionRow struct {
	answers, scores string
	completedAt     sql.NullString
	startedAt       string
}

func encodeJSON(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "{}", nil
	}
	return string(b), nil
}

func sessionArgs(sess *models.Session) ([]any, error) {
	answers, err := encodeJSON(sess.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	scores, err := encodeJSON(sess.Scores)
	if err != nil {
		return nil, fmt.Errorf("encode scores: %w", err)
	}
	var completed sql.NullString
	if sess.CompletedAt != nil {
		completed = sql.NullString{String: formatTime(*sess.CompletedAt), Valid: true}
	}
	status := sess.Status
	if status == "" {
		status = models.StatusIncomplete
	}
	p := sess.Profile
	return []any{
		p.FullName, p.Email, p.Phone, p.Age, p.Gender, p.Education, p.Occupation, p.Location,
		answers, scores, sess.TopThreeCode, sess.TimeTaken, string(status),
		formatTime(sess.StartedAt), completed, sess.UserAgent, sess.IPAddress,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (*models.Session, error) {
	var (
		sess   models.Session
		row    sessionRow
		status string
	)
	p := &sess.Profile
	if err := sc.Scan(&sess.ID, &sess.SessionID, &p.FullName, &p.Email, &p.Phone, &p.Age, &p.Gender,
		&p.Education, &p.Occupation, &p.Location, &row.answers, &row.scores, &sess.TopThreeCode,
		&sess.TimeTaken, &status, &row.startedAt, &row.completedAt, &sess.UserAgent, &sess.IPAddress); err != nil {
		return nil, err
	}
	sess.Status = models.Status(status)
	if row.answers != "" && row.answers != "{}" {
		if err := json.Unmarshal([]byte(row.answers), &sess.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of %s: %w", sess.SessionID, err)
		}
	}
	if row.scores != "" && row.scores != "{}" {
		if err := json.Unmarshal([]byte(row.scores), &sess.Scores); err != nil {
			return nil, fmt.Errorf("decode scores of %s: %w", sess.SessionID, err)
		}
	}
	started, err := parseTime(row.startedAt)
	if err != nil {
		return nil, fmt.Errorf("decode started_at of %s: %w", sess.SessionID, err)
	}
	sess.StartedAt = started
	if row.completedAt.Valid && row.completedAt.String != "" {
		t, err := parseTime(row.completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("decode completed_at of %s: %w", sess.SessionID, err)
		}
		sess.CompletedAt = &t
	}
	return &sess, nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *models.Session) (*models.Session, error) {
	args, err := sessionArgs(sess)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO quiz_sessions (session_id, full_name, email, phone, age,
		gender, education, occupation, location, answers, scores, top_three_code, time_taken, status,
		started_at, completed_at, user_agent, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{sess.SessionID}, args...)...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, services.ErrDuplicateSession
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert session id: %w", err)
	}
	return s.getByID(ctx, id)
}

func (s *SQLiteStore) getByID(ctx context.Context, id int64) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM quiz_sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", id, err)
	}
	return sess, nil
}

func (s *SQLiteStore) UpdateSession(ctx context.Context, sess *models.Session) (bool, error) {
	args, err := sessionArgs(sess)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE quiz_sessions SET full_name = ?, email = ?, phone = ?, age = ?,
		gender = ?, education = ?, occupation = ?, location = ?, answers = ?, scores = ?,
		top_three_code = ?, time_taken = ?, status = ?, started_at = ?, completed_at = ?,
		user_agent = ?, ip_address = ? WHERE session_id = ?`,
		append(args, sess.SessionID)...)
	if err != nil {
		return false, fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update session: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM quiz_sessions WHERE session_id = ?`, sessionID)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// ListSessions returns sessions newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, status models.Status) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM quiz_sessions`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	out := []*models.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quiz_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) CountSessions(ctx context.Context, dayStart time.Time) (models.Counts, error) {
	var c models.Counts
	var complete, today sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
		SUM(CASE WHEN started_at >= ? THEN 1 ELSE 0 END)
		FROM quiz_sessions`, string(models.StatusComplete), formatTime(dayStart)).Scan(&c.Total, &complete, &today)
	if err != nil {
		return c, fmt.Errorf("count sessions: %w", err)
	}
	c.Complete = int(complete.Int64)
	c.Incomplete = c.Total - c.Complete
	c.Today = int(today.Int64)
	return c, nil
}

func (s *SQLiteStore) AddAudit(ctx context.Context, e models.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO audit_log (time, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		formatTime(e.Time), e.Actor, e.Action, e.Target, e.Note)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAudit(ctx context.Context) ([]models.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT time, actor, action, target, note FROM audit_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()
	out := []models.AuditEntry{}
	for rows.Next() {
		var (
			e  models.AuditEntry
			ts string
		)
		if err := rows.Scan(&ts, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			return nil, fmt.Errorf("list audit: %w", err)
		}
		if e.Time, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("decode audit time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Import copies a snapshot into the store in id order. Sessions whose id
// already exists are skipped. It returns the number of sessions imported.
func (s *SQLiteStore) Import(ctx context.Context, snap *api.Snapshot) (int, error) {
	if snap == nil {
		return 0, nil
	}
	sessions := append([]*models.Session(nil), snap.Sessions...)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i] != nil && sessions[j] != nil && sessions[i].ID < sessions[j].ID
	})
	n := 0
	for _, sess := range sessions {
		if sess == nil || sess.SessionID == "" {
			continue
		}
		if _, err := s.CreateSession(ctx, sess); err != nil {
			if errors.Is(err, services.ErrDuplicateSession) {
				continue
			}
			return n, fmt.Errorf("import session %s: %w", sess.SessionID, err)
		}
		n++
	}
	for _, e := range snap.Audit {
		if err := s.AddAudit(ctx, e); err != nil {
			return n, err
		}
	}
	return n, nil
}
