package utils

import "testing"

func TestT_Fallback(t *testing.T) {
	if got := T("fr", "health.ok"); got != "ok" {
		t.Fatalf("fallback to en failed: %s", got)
	}
	if got := T("ne", "error.internal"); got != "internal error" {
		t.Fatalf("per-key fallback failed: %s", got)
	}
	if got := T("en", "no.such.key"); got != "no.such.key" {
		t.Fatalf("missing key should echo, got %s", got)
	}
}

func TestT_Nepali(t *testing.T) {
	if got := T("ne", "report.not_specified"); got == T("en", "report.not_specified") {
		t.Fatalf("expected a Nepali label, got %s", got)
	}
}
