package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeRedactsContactDetails(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.Info("registered", "email", "asha@example.com", "phone", "98000000", "session_id", "20251018-abc", "education", "bachelors")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["email"] != "[REDACTED]" || fields["phone"] != "[REDACTED]" {
		t.Fatalf("contact details not redacted: %v", fields)
	}
	if sid, _ := fields["session_id"].(string); !strings.HasPrefix(sid, "hash:") {
		t.Fatalf("session_id not hashed: %v", fields["session_id"])
	}
	if fields["education"] != "bachelors" {
		t.Fatalf("plain field altered: %v", fields["education"])
	}
}

func TestSanitizeOddKeyValues(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output %v", out)
	}
}
