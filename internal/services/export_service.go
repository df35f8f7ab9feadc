package services

import (
	"context"
	"fmt"
	"time"

	"github.com/soaringjerry/Disha/internal/models"
	"github.com/soaringjerry/Disha/internal/platform/logger"
)

// ExportResult is a rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService produces the admin CSV export.
type ExportService struct {
	store SessionStore
	audit AuditStore
	log   *logger.Logger
	now   func() time.Time
}

func NewExportService(store SessionStore, audit AuditStore, log *logger.Logger) *ExportService {
	if log == nil {
		log = logger.Nop()
	}
	return &ExportService{
		store: store,
		audit: audit,
		log:   log.With("service", "ExportService"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ExportCSV renders every session (optionally filtered by status) as CSV and
// records the export in the audit log under actor.
func (s *ExportService) ExportCSV(ctx context.Context, status, actor string) (*ExportResult, error) {
	st := models.Status(status)
	if st != "" && !st.Valid() {
		return nil, NewInvalidError("status must be complete or incomplete")
	}
	sessions, err := s.store.ListSessions(ctx, st)
	if err != nil {
		return nil, storageErr("export sessions", err)
	}
	data, err := ExportSessionsCSV(sessions)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	now := s.now()
	if s.audit != nil {
		note := fmt.Sprintf("%d rows", len(sessions))
		if st != "" {
			note += ", status=" + string(st)
		}
		if err := s.audit.AddAudit(ctx, models.AuditEntry{Time: now, Actor: actor, Action: "export_csv", Target: "sessions", Note: note}); err != nil {
			s.log.Warn("audit write failed", "action", "export_csv", "error", err)
		}
	}
	s.log.Info("sessions exported", "rows", len(sessions), "status", string(st))
	return &ExportResult{
		Filename:    "disha-sessions-" + now.Format("20060102") + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
		Rows:        len(sessions),
	}, nil
}
