package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/soaringjerry/Disha/internal/models"
)

// RankedScore is one entry of a ranking.
type RankedScore struct {
	Code  models.TypeCode `json:"code"`
	Score int             `json:"score"`
}

// Rank orders all six types by score, highest first. Equal scores keep the
// canonical R, I, A, S, E, C order. Types missing from scores count as 0.
func Rank(scores models.Scores) []RankedScore {
	out := make([]RankedScore, 0, len(models.CanonicalOrder))
	for _, code := range models.CanonicalOrder {
		out = append(out, RankedScore{Code: code, Score: scores.Get(code)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// TopThree concatenates the codes of the first three ranked entries.
func TopThree(ranked []RankedScore) string {
	var b strings.Builder
	for i := 0; i < len(ranked) && i < 3; i++ {
		b.WriteString(string(ranked[i].Code))
	}
	return b.String()
}

// NormalizeScores upper-cases score keys and rejects keys that name no
// interest type or repeat one in a different case.
func NormalizeScores(in models.Scores) (models.Scores, error) {
	out := make(models.Scores, len(in))
	for k, v := range in {
		code := models.TypeCode(strings.ToUpper(strings.TrimSpace(string(k))))
		if _, ok := models.LookupType(code); !ok {
			return nil, NewInvalidError(fmt.Sprintf("unknown score type %q", k))
		}
		if _, dup := out[code]; dup {
			return nil, NewInvalidError(fmt.Sprintf("duplicate score type %q", code))
		}
		out[code] = v
	}
	return out, nil
}

// ClampScores bounds every tally to [0, MaxScore] and fills missing types
// with 0. Keys are matched case-insensitively.
func ClampScores(in models.Scores) models.Scores {
	folded := make(models.Scores, len(in))
	for k, v := range in {
		folded[models.TypeCode(strings.ToUpper(strings.TrimSpace(string(k))))] = v
	}
	out := make(models.Scores, len(models.CanonicalOrder))
	for _, code := range models.CanonicalOrder {
		v := folded.Get(code)
		if v < 0 {
			v = 0
		}
		if v > models.MaxScore {
			v = models.MaxScore
		}
		out[code] = v
	}
	return out
}

// Tally counts affirmative answers per type using the question bank.
// Unknown question ids are ignored.
func Tally(answers map[string]string) models.Scores {
	out := make(models.Scores, len(models.CanonicalOrder))
	for _, code := range models.CanonicalOrder {
		out[code] = 0
	}
	for id, choice := range answers {
		q, ok := models.LookupQuestion(id)
		if !ok || !models.AffirmativeAnswer(choice) {
			continue
		}
		out[q.Type]++
	}
	return ClampScores(out)
}

// Percent maps a tally onto 0..100 relative to MaxScore.
func Percent(score int) int {
	if score <= 0 {
		return 0
	}
	if score >= models.MaxScore {
		return 100
	}
	return int(math.Round(float64(score) / float64(models.MaxScore) * 100))
}
