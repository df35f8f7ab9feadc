package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/Disha/internal/models"
	"github.com/soaringjerry/Disha/internal/platform/logger"
	"github.com/soaringjerry/Disha/internal/utils"
)

// Section kinds, in document order.
const (
	SectionCover      = "cover"
	SectionProfile    = "profile"
	SectionScores     = "scores"
	SectionTypeDetail = "type_detail"
	SectionSummary    = "summary"
)

// ReportField is a labelled profile value.
type ReportField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ReportScore is one row of the ranked score table.
type ReportScore struct {
	Rank    int             `json:"rank"`
	Code    models.TypeCode `json:"code"`
	Name    string          `json:"name"`
	Score   int             `json:"score"`
	Max     int             `json:"max"`
	Percent int             `json:"percent"`
	Color   string          `json:"color"`
	Top     bool            `json:"top"`
}

// ReportSection is one block of the report. Only the fields relevant to Kind
// are populated.
type ReportSection struct {
	Kind   string               `json:"kind"`
	Title  string               `json:"title"`
	Text   string               `json:"text,omitempty"`
	Fields []ReportField        `json:"fields,omitempty"`
	Scores []ReportScore        `json:"scores,omitempty"`
	Type   *models.InterestType `json:"type,omitempty"`
	Rank   int                  `json:"rank,omitempty"`
	Items  []string             `json:"items,omitempty"`
}

// ReportDocument is the rendering-independent report of a completed session.
type ReportDocument struct {
	SessionID     string          `json:"session_id"`
	Locale        string          `json:"locale"`
	Title         string          `json:"title"`
	Respondent    string          `json:"respondent"`
	TopThreeCode  string          `json:"top_three_code"`
	GeneratedAt   time.Time       `json:"generated_at"`
	SummarySource string          `json:"summary_source"`
	Sections      []ReportSection `json:"sections"`
}

// Section returns the first section of the given kind.
func (d *ReportDocument) Section(kind string) (ReportSection, bool) {
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return ReportSection{}, false
}

// ReportAssembler turns a completed session into a ReportDocument. The output
// depends only on the session and the summary text.
type ReportAssembler struct {
	summary *BestEffortSummarizer
	log     *logger.Logger
}

func NewReportAssembler(summary *BestEffortSummarizer, log *logger.Logger) *ReportAssembler {
	if log == nil {
		log = logger.Nop()
	}
	if summary == nil {
		summary = NewBestEffortSummarizer(nil, 0, log)
	}
	return &ReportAssembler{summary: summary, log: log.With("service", "ReportAssembler")}
}

// Assemble builds the English report.
func (a *ReportAssembler) Assemble(ctx context.Context, sess *models.Session) (*ReportDocument, error) {
	return a.AssembleLocale(ctx, sess, "en")
}

// AssembleLocale builds the report with labels in locale. It fails with
// ErrIncomplete for unfinished sessions and ErrDataIntegrity when the stored
// code does not name three known types.
func (a *ReportAssembler) AssembleLocale(ctx context.Context, sess *models.Session, locale string) (*ReportDocument, error) {
	if sess == nil {
		return nil, NewNotFoundError("session not found")
	}
	if !sess.Complete() {
		return nil, fmt.Errorf("report %s: %w", sess.SessionID, ErrIncomplete)
	}
	code := strings.ToUpper(strings.TrimSpace(sess.TopThreeCode))
	codes, ok := models.ParseCode(code)
	if !ok {
		a.log.Error("stored code does not resolve", "session_id", sess.SessionID, "code", sess.TopThreeCode)
		return nil, fmt.Errorf("report %s: code %q: %w", sess.SessionID, sess.TopThreeCode, ErrDataIntegrity)
	}
	types := make([]models.InterestType, len(codes))
	for i, c := range codes {
		types[i], _ = models.LookupType(c)
	}

	generatedAt := sess.StartedAt
	if sess.CompletedAt != nil {
		generatedAt = *sess.CompletedAt
	}
	name := strings.TrimSpace(sess.Profile.FullName)
	summary := a.summary.Summarize(ctx, SummaryInput{Profile: sess.Profile, TopThreeCode: code})

	doc := &ReportDocument{
		SessionID:     sess.SessionID,
		Locale:        locale,
		Title:         utils.T(locale, "report.title"),
		Respondent:    placeholder(locale, name),
		TopThreeCode:  code,
		GeneratedAt:   generatedAt.UTC(),
		SummarySource: summary.Source,
	}
	doc.Sections = append(doc.Sections,
		coverSection(locale, code, types),
		profileSection(locale, sess),
		scoresSection(locale, sess.Scores, codes),
	)
	for i, it := range types {
		t := it
		doc.Sections = append(doc.Sections, ReportSection{
			Kind:  SectionTypeDetail,
			Title: fmt.Sprintf("%s %d: %s", utils.T(locale, "report.type_detail"), i+1, typeName(locale, it)),
			Text:  it.Description,
			Type:  &t,
			Rank:  i + 1,
		})
	}
	doc.Sections = append(doc.Sections, ReportSection{
		Kind:  SectionSummary,
		Title: utils.T(locale, "report.summary"),
		Text:  summary.Text,
		Items: nextSteps(types),
	})
	return doc, nil
}

func coverSection(locale, code string, types []models.InterestType) ReportSection {
	names := make([]string, len(types))
	for i, it := range types {
		names[i] = typeName(locale, it)
	}
	return ReportSection{
		Kind:  SectionCover,
		Title: utils.T(locale, "report.cover"),
		Text:  code + ": " + strings.Join(names, " · "),
	}
}

func profileSection(locale string, sess *models.Session) ReportSection {
	p := sess.Profile
	age := ""
	if p.Age > 0 {
		age = strconv.Itoa(p.Age)
	}
	taken := ""
	if sess.TimeTaken > 0 {
		taken = (time.Duration(sess.TimeTaken) * time.Second).String()
	}
	raw := []struct{ key, value string }{
		{"full_name", p.FullName},
		{"email", p.Email},
		{"phone", p.Phone},
		{"age", age},
		{"gender", p.Gender},
		{"education", p.Education},
		{"occupation", p.Occupation},
		{"location", p.Location},
		{"time_taken", taken},
	}
	fields := make([]ReportField, 0, len(raw))
	for _, f := range raw {
		fields = append(fields, ReportField{
			Key:   f.key,
			Label: utils.T(locale, "field."+f.key),
			Value: placeholder(locale, f.value),
		})
	}
	return ReportSection{Kind: SectionProfile, Title: utils.T(locale, "report.profile"), Fields: fields}
}

// scoresSection lists all six types in rank order. The stored code decides
// which rows carry the top flag.
func scoresSection(locale string, scores models.Scores, top []models.TypeCode) ReportSection {
	isTop := map[models.TypeCode]bool{}
	for _, c := range top {
		isTop[c] = true
	}
	ranked := Rank(scores)
	rows := make([]ReportScore, 0, len(ranked))
	for i, r := range ranked {
		it, _ := models.LookupType(r.Code)
		rows = append(rows, ReportScore{
			Rank:    i + 1,
			Code:    r.Code,
			Name:    typeName(locale, it),
			Score:   r.Score,
			Max:     models.MaxScore,
			Percent: Percent(r.Score),
			Color:   it.Color,
			Top:     isTop[r.Code],
		})
	}
	return ReportSection{Kind: SectionScores, Title: utils.T(locale, "report.scores"), Scores: rows}
}

func nextSteps(types []models.InterestType) []string {
	first := types[0]
	steps := []string{
		fmt.Sprintf("Talk to someone working as a %s about a typical day.", firstOr(first.Careers, "professional in your field")),
	}
	if len(first.Environments) > 0 {
		steps = append(steps, fmt.Sprintf("Spend time in %s through volunteering, internships or visits.", strings.ToLower(first.Environments[0])))
	}
	if len(types) > 1 && len(types[1].Abilities) > 0 {
		steps = append(steps, fmt.Sprintf("Build your %s skills with a short course or project.", strings.ToLower(types[1].Abilities[0])))
	}
	steps = append(steps, "Compare the careers listed above with subjects you can study next, and share this report with a career counsellor.")
	return steps
}

func typeName(locale string, it models.InterestType) string {
	if locale == "ne" && it.LocalName != "" {
		return it.LocalName + " (" + it.Name + ")"
	}
	return it.Name
}

func placeholder(locale, v string) string {
	if strings.TrimSpace(v) == "" {
		return utils.T(locale, "report.not_specified")
	}
	return strings.TrimSpace(v)
}
