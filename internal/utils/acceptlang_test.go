package utils

import "testing"

func TestDetermineLocale_QueryParamWins(t *testing.T) {
	got := DetermineLocale("ne-NP", "en-US,en;q=0.9,ne;q=0.8", SupportedLocales, "en")
	if got != "ne" {
		t.Fatalf("want ne, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguageOrder(t *testing.T) {
	got := DetermineLocale("", "en-US,en;q=0.9,ne;q=0.8", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguagePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "ne;q=0.9,en;q=0.8", SupportedLocales, "en")
	if got != "ne" {
		t.Fatalf("want ne, got %s", got)
	}
}

func TestDetermineLocale_ZeroQIsExcluded(t *testing.T) {
	got := DetermineLocale("", "ne;q=0,en;q=0.2", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_DefaultFallback(t *testing.T) {
	got := DetermineLocale("", "fr-FR,es;q=0.9", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en fallback, got %s", got)
	}
	if got := DetermineLocale("", "", SupportedLocales, "xx"); got != "en" {
		t.Fatalf("want first supported, got %s", got)
	}
}
