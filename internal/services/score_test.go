package services

import (
	"testing"

	"github.com/soaringjerry/Disha/internal/models"
)

func TestTopThreeTieBreakCanonicalOrder(t *testing.T) {
	scores := models.Scores{"R": 5, "I": 5, "A": 5, "S": 3, "E": 2, "C": 1}
	for i := 0; i < 50; i++ {
		if got := TopThree(Rank(scores)); got != "RIA" {
			t.Fatalf("TopThree = %q, want RIA", got)
		}
	}
}

func TestTopThreeScenario(t *testing.T) {
	scores := models.Scores{"R": 6, "I": 4, "A": 2, "S": 7, "E": 1, "C": 3}
	if got := TopThree(Rank(scores)); got != "SRI" {
		t.Fatalf("TopThree = %q, want SRI", got)
	}
}

func TestRankPropertiesExhaustive(t *testing.T) {
	var vals [6]int
	var walk func(depth int)
	walk = func(depth int) {
		if depth == 6 {
			scores := models.Scores{}
			for i, code := range models.CanonicalOrder {
				scores[code] = vals[i]
			}
			ranked := Rank(scores)
			if len(ranked) != 6 {
				t.Fatalf("Rank returned %d entries for %v", len(ranked), scores)
			}
			for i := 1; i < len(ranked); i++ {
				if ranked[i].Score > ranked[i-1].Score {
					t.Fatalf("ranking not non-increasing for %v: %v", scores, ranked)
				}
			}
			code := TopThree(ranked)
			if _, ok := models.ParseCode(code); !ok {
				t.Fatalf("TopThree(%v)=%q is not three distinct codes", scores, code)
			}
			return
		}
		for v := 0; v <= models.MaxScore; v++ {
			vals[depth] = v
			walk(depth + 1)
		}
	}
	walk(0)
}

func TestRankMissingTypesCountAsZero(t *testing.T) {
	ranked := Rank(models.Scores{"C": 2})
	if ranked[0].Code != "C" || ranked[0].Score != 2 {
		t.Fatalf("unexpected head %+v", ranked[0])
	}
	if got := TopThree(ranked); got != "CRI" {
		t.Fatalf("TopThree = %q, want CRI", got)
	}
	if got := TopThree(Rank(nil)); got != "RIA" {
		t.Fatalf("TopThree(nil) = %q, want RIA", got)
	}
}

func TestTally(t *testing.T) {
	answers := map[string]string{
		"q1":  "yes", // R
		"q7":  "yes", // R
		"q2":  "yes", // I
		"q4":  "no",  // S
		"q99": "yes",
	}
	got := Tally(answers)
	if got["R"] != 2 || got["I"] != 1 || got["S"] != 0 || len(got) != 6 {
		t.Fatalf("unexpected tally %v", got)
	}
}

func TestClampScores(t *testing.T) {
	got := ClampScores(models.Scores{"R": -1, "I": 9, "A": 3})
	if got["R"] != 0 || got["I"] != models.MaxScore || got["A"] != 3 || got["C"] != 0 {
		t.Fatalf("unexpected clamp %v", got)
	}
}

func TestClampScoresFoldsCase(t *testing.T) {
	got := ClampScores(models.Scores{"r": 6, "i": 4, "a": 2, "s": 7, "e": 1, "c": 3})
	if code := TopThree(Rank(got)); code != "SRI" {
		t.Fatalf("lowercase keys ranked %q (%v), want SRI", code, got)
	}
}

func TestNormalizeScores(t *testing.T) {
	got, err := NormalizeScores(models.Scores{" s ": 7, "r": 6, "I": 5})
	if err != nil {
		t.Fatalf("NormalizeScores error: %v", err)
	}
	if got["S"] != 7 || got["R"] != 6 || got["I"] != 5 || len(got) != 3 {
		t.Fatalf("unexpected normalized scores %v", got)
	}
	for _, bad := range []models.Scores{{"X": 1}, {"realistic": 2}, {"": 1}, {"r": 1, "R": 2}} {
		_, err := NormalizeScores(bad)
		if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
			t.Fatalf("NormalizeScores(%v) err = %v, want invalid", bad, err)
		}
	}
}

func TestPercent(t *testing.T) {
	cases := []struct{ in, want int }{{0, 0}, {-2, 0}, {7, 100}, {9, 100}, {1, 14}, {4, 57}, {6, 86}}
	for _, c := range cases {
		if got := Percent(c.in); got != c.want {
			t.Fatalf("Percent(%d)=%d, want %d", c.in, got, c.want)
		}
	}
}
