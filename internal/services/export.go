package services

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/soaringjerry/Disha/internal/models"
)

// SessionCSVHeader is the fixed column order of the admin export.
var SessionCSVHeader = []string{
	"id", "session_id", "full_name", "email", "phone", "age", "gender", "education",
	"occupation", "location", "top_three_code", "time_taken", "status", "started_at",
	"completed_at", "user_agent", "ip_address",
	"score_R", "score_I", "score_A", "score_S", "score_E", "score_C",
}

// WriteSessionsCSV writes one row per session under SessionCSVHeader.
// Absent scores are written as 0 and absent timestamps as empty cells.
func WriteSessionsCSV(w io.Writer, sessions []*models.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SessionCSVHeader); err != nil {
		return err
	}
	for _, s := range sessions {
		if s == nil {
			continue
		}
		if err := cw.Write(sessionRecord(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportSessionsCSV renders sessions into an in-memory CSV document.
func ExportSessionsCSV(sessions []*models.Session) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := WriteSessionsCSV(buf, sessions); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sessionRecord(s *models.Session) []string {
	p := s.Profile
	age := ""
	if p.Age > 0 {
		age = strconv.Itoa(p.Age)
	}
	completed := ""
	if s.CompletedAt != nil {
		completed = s.CompletedAt.UTC().Format(time.RFC3339)
	}
	started := ""
	if !s.StartedAt.IsZero() {
		started = s.StartedAt.UTC().Format(time.RFC3339)
	}
	rec := []string{
		strconv.FormatInt(s.ID, 10),
		s.SessionID,
		p.FullName,
		p.Email,
		p.Phone,
		age,
		p.Gender,
		p.Education,
		p.Occupation,
		p.Location,
		s.TopThreeCode,
		strconv.Itoa(s.TimeTaken),
		string(s.Status),
		started,
		completed,
		s.UserAgent,
		s.IPAddress,
	}
	for _, code := range models.CanonicalOrder {
		rec = append(rec, strconv.Itoa(s.Scores.Get(code)))
	}
	return rec
}
