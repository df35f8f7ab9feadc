package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/Disha/internal/models"
)

func seedExportStore(t *testing.T) *stubSessionStore {
	t.Helper()
	store := newStubSessionStore()
	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	for i, st := range []models.Status{models.StatusComplete, models.StatusIncomplete, models.StatusComplete} {
		sess := &models.Session{SessionID: "s" + string(rune('a'+i)), Status: st, StartedAt: now}
		if st == models.StatusComplete {
			sess.Scores = models.Scores{"R": 3}
			sess.TopThreeCode = "RIA"
			sess.CompletedAt = &now
		}
		if _, err := store.CreateSession(context.Background(), sess); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

func TestExportCSVRowCountMatchesSessions(t *testing.T) {
	store := seedExportStore(t)
	svc := NewExportService(store, store, nil)
	svc.now = func() time.Time { return time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC) }

	res, err := svc.ExportCSV(context.Background(), "", "admin")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	recs, err := readCSV(res.Data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs)-1 != 3 || res.Rows != 3 {
		t.Fatalf("want 3 data rows, got %d (Rows=%d)", len(recs)-1, res.Rows)
	}
	if res.Filename != "disha-sessions-20250203.csv" {
		t.Fatalf("filename: %s", res.Filename)
	}
	if !strings.HasPrefix(res.ContentType, "text/csv") {
		t.Fatalf("content type: %s", res.ContentType)
	}
	if len(store.audit) != 1 || store.audit[0].Action != "export_csv" || store.audit[0].Actor != "admin" {
		t.Fatalf("audit not recorded: %+v", store.audit)
	}
}

func TestExportCSVStatusFilter(t *testing.T) {
	store := seedExportStore(t)
	svc := NewExportService(store, nil, nil)
	res, err := svc.ExportCSV(context.Background(), "incomplete", "admin")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Rows != 1 {
		t.Fatalf("want 1 incomplete row, got %d", res.Rows)
	}
	if _, err := svc.ExportCSV(context.Background(), "archived", "admin"); err == nil {
		t.Fatalf("expected invalid status error")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
}
