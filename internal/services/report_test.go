package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Disha/internal/models"
)

func completedSession(code string, scores models.Scores) *models.Session {
	done := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return &models.Session{
		ID:           7,
		SessionID:    "20250314093000-abcdef012345",
		Profile:      models.Profile{FullName: "Ram Thapa", Education: "bachelors", Age: 21},
		Status:       models.StatusComplete,
		Scores:       scores,
		TopThreeCode: code,
		TimeTaken:    312,
		StartedAt:    done.Add(-6 * time.Minute),
		CompletedAt:  &done,
	}
}

func TestAssembleSectionOrder(t *testing.T) {
	a := NewReportAssembler(nil, nil)
	sess := completedSession("RIC", models.Scores{"R": 6, "I": 5, "A": 1, "S": 2, "E": 0, "C": 4})
	doc, err := a.Assemble(context.Background(), sess)
	require.NoError(t, err)

	kinds := make([]string, 0, len(doc.Sections))
	var details []models.TypeCode
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind)
		if s.Kind == SectionTypeDetail {
			details = append(details, s.Type.Code)
		}
	}
	want := []string{SectionCover, SectionProfile, SectionScores, SectionTypeDetail, SectionTypeDetail, SectionTypeDetail, SectionSummary}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("section order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]models.TypeCode{"R", "I", "C"}, details); diff != "" {
		t.Fatalf("detail order (-want +got):\n%s", diff)
	}
	assert.Equal(t, "RIC", doc.TopThreeCode)
	assert.Equal(t, *sess.CompletedAt, doc.GeneratedAt)
	assert.Equal(t, SummarySourceTemplate, doc.SummarySource)
}

func TestAssembleScoresTable(t *testing.T) {
	a := NewReportAssembler(nil, nil)
	doc, err := a.Assemble(context.Background(), completedSession("SRI", models.Scores{"R": 6, "I": 5, "A": 2, "S": 7, "E": 3, "C": 1}))
	require.NoError(t, err)
	sec, ok := doc.Section(SectionScores)
	require.True(t, ok)
	require.Len(t, sec.Scores, 6)

	codes := []models.TypeCode{}
	for _, r := range sec.Scores {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []models.TypeCode{"S", "R", "I", "E", "A", "C"}, codes)
	assert.Equal(t, 100, sec.Scores[0].Percent)
	assert.Equal(t, 86, sec.Scores[1].Percent)
	assert.True(t, sec.Scores[2].Top)
	assert.False(t, sec.Scores[3].Top)
	assert.Equal(t, 1, sec.Scores[0].Rank)
	assert.Equal(t, models.MaxScore, sec.Scores[5].Max)
}

func TestAssemblePlaceholders(t *testing.T) {
	sess := completedSession("ESC", models.Scores{"E": 5, "S": 4, "C": 3})
	sess.Profile = models.Profile{}
	sess.TimeTaken = 0
	doc, err := NewReportAssembler(nil, nil).Assemble(context.Background(), sess)
	require.NoError(t, err)
	sec, _ := doc.Section(SectionProfile)
	for _, f := range sec.Fields {
		assert.Equal(t, "Not specified", f.Value, "field %s", f.Key)
	}
	assert.Equal(t, "Not specified", doc.Respondent)
	sum, _ := doc.Section(SectionSummary)
	assert.Contains(t, sum.Text, "You")
	assert.NotEmpty(t, sum.Items)
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := NewReportAssembler(nil, nil)
	sess := completedSession("AIS", models.Scores{"A": 7, "I": 6, "S": 5})
	first, err := a.Assemble(context.Background(), sess)
	require.NoError(t, err)
	second, err := a.Assemble(context.Background(), sess)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("report changed between runs (-first +second):\n%s", diff)
	}
}

func TestAssembleUsesRemoteSummary(t *testing.T) {
	remote := funcGenerator(func(context.Context, SummaryInput) (string, error) { return "A tailored paragraph.", nil })
	a := NewReportAssembler(NewBestEffortSummarizer(remote, time.Second, nil), nil)
	doc, err := a.Assemble(context.Background(), completedSession("RIC", models.Scores{"R": 3, "I": 2, "C": 1}))
	require.NoError(t, err)
	sum, _ := doc.Section(SectionSummary)
	assert.Equal(t, "A tailored paragraph.", sum.Text)
	assert.Equal(t, SummarySourceRemote, doc.SummarySource)
}

func TestAssembleRejectsBadCode(t *testing.T) {
	a := NewReportAssembler(nil, nil)
	for _, code := range []string{"RIX", "RI", "RRI", ""} {
		_, err := a.Assemble(context.Background(), completedSession(code, models.Scores{"R": 1}))
		require.Error(t, err, "code %q", code)
		assert.True(t, errors.Is(err, ErrDataIntegrity), "code %q: %v", code, err)
	}
}

func TestAssembleRejectsIncomplete(t *testing.T) {
	sess := completedSession("RIC", nil)
	sess.Status = models.StatusIncomplete
	sess.CompletedAt = nil
	_, err := NewReportAssembler(nil, nil).Assemble(context.Background(), sess)
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestAssembleNepaliLabels(t *testing.T) {
	doc, err := NewReportAssembler(nil, nil).AssembleLocale(context.Background(), completedSession("SAI", models.Scores{"S": 5, "A": 4, "I": 3}), "ne")
	require.NoError(t, err)
	detail := doc.Sections[3]
	assert.Contains(t, detail.Title, "सामाजिक")
	assert.Equal(t, "ne", doc.Locale)
}
