package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soaringjerry/Disha/internal/models"
	"github.com/soaringjerry/Disha/internal/platform/logger"
)

// DefaultSummaryTimeout bounds a single remote summary attempt.
const DefaultSummaryTimeout = 10 * time.Second

// SummaryInput is what a generator needs to personalise the narrative.
type SummaryInput struct {
	Profile      models.Profile
	TopThreeCode string
}

// SummaryGenerator produces a short narrative paragraph.
type SummaryGenerator interface {
	Generate(ctx context.Context, in SummaryInput) (string, error)
}

// Summary sources reported alongside the text.
const (
	SummarySourceRemote   = "remote"
	SummarySourceTemplate = "template"
)

// Summary is the outcome of a best-effort generation.
type Summary struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

var errNoRemote = errors.New("no remote summary provider configured")

// BestEffortSummarizer makes one time-bounded remote attempt and falls back to
// the deterministic template on any failure. It never fails and never
// returns empty text.
type BestEffortSummarizer struct {
	Remote   SummaryGenerator
	Fallback FallbackSummarizer
	Timeout  time.Duration
	log      *logger.Logger
}

func NewBestEffortSummarizer(remote SummaryGenerator, timeout time.Duration, log *logger.Logger) *BestEffortSummarizer {
	if timeout <= 0 {
		timeout = DefaultSummaryTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BestEffortSummarizer{Remote: remote, Timeout: timeout, log: log.With("service", "Summary")}
}

// Summarize returns remote text when available, template text otherwise.
func (b *BestEffortSummarizer) Summarize(ctx context.Context, in SummaryInput) Summary {
	text, err := b.remote(ctx, in)
	if err == nil {
		return Summary{Text: text, Source: SummarySourceRemote}
	}
	if !errors.Is(err, errNoRemote) {
		b.log.Warn("remote summary failed, using template", "error", err)
	}
	return Summary{Text: b.Fallback.Text(in), Source: SummarySourceTemplate}
}

// Generate satisfies SummaryGenerator; the error is always nil.
func (b *BestEffortSummarizer) Generate(ctx context.Context, in SummaryInput) (string, error) {
	return b.Summarize(ctx, in).Text, nil
}

func (b *BestEffortSummarizer) remote(ctx context.Context, in SummaryInput) (string, error) {
	if b == nil || b.Remote == nil {
		return "", errNoRemote
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultSummaryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("summary provider panic: %v", r)}
			}
		}()
		t, e := b.Remote.Generate(ctx, in)
		done <- result{t, e}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		t := strings.TrimSpace(r.text)
		if t == "" {
			return "", errors.New("empty summary text")
		}
		return t, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// FallbackSummarizer renders a fixed-structure paragraph. It is pure and
// total: any input, including an empty or malformed code, yields text.
type FallbackSummarizer struct{}

func (FallbackSummarizer) Generate(_ context.Context, in SummaryInput) (string, error) {
	return FallbackSummarizer{}.Text(in), nil
}

func (FallbackSummarizer) Text(in SummaryInput) string {
	name := strings.TrimSpace(in.Profile.FullName)
	if name == "" {
		name = "You"
	}
	education := educationPhrase(in.Profile.Education)
	code := strings.ToUpper(strings.TrimSpace(in.TopThreeCode))
	codes, ok := models.ParseCode(code)
	if !ok {
		return fmt.Sprintf("%s, your interest profile is still taking shape. Building on %s, "+
			"try exploring activities across practical, scientific, creative, social, business and organisational areas, "+
			"and revisit the assessment to discover which of them energise you most.", name, education)
	}

	types := make([]models.InterestType, 0, len(codes))
	for _, c := range codes {
		it, _ := models.LookupType(c)
		types = append(types, it)
	}
	careers := make([]string, 0, 3)
	for _, it := range types {
		if len(it.Careers) > 0 {
			careers = append(careers, it.Careers[0])
		}
	}
	return fmt.Sprintf("%s, your Holland Code is %s. Your strongest interests are %s, %s and %s, "+
		"which suggests you are %s and %s at heart. Building on %s, consider exploring careers such as %s, "+
		"and talk with a mentor or career counsellor about the next steps that fit your goals.",
		name, code,
		types[0].Name, types[1].Name, types[2].Name,
		strings.ToLower(firstOr(types[0].Traits, "motivated")),
		strings.ToLower(firstOr(types[1].Traits, "curious")),
		education,
		joinList(careers))
}

func educationPhrase(edu string) string {
	switch strings.ToLower(strings.TrimSpace(edu)) {
	case "":
		return "your studies so far"
	case "see", "slc":
		return "your SEE studies"
	case "plus2", "+2", "higher_secondary":
		return "your +2 studies"
	case "bachelors", "bachelor":
		return "your bachelor's studies"
	case "masters", "master":
		return "your master's studies"
	case "phd", "doctorate":
		return "your doctoral studies"
	default:
		return "your background in " + strings.TrimSpace(edu)
	}
}

func firstOr(list []string, def string) string {
	if len(list) == 0 {
		return def
	}
	return list[0]
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return "roles that match your interests"
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
	}
}

// summaryPrompt is the user prompt shared by the remote providers.
func summaryPrompt(in SummaryInput) string {
	var b strings.Builder
	p := in.Profile
	fmt.Fprintf(&b, "Respondent: %s\n", orPlaceholder(p.FullName))
	fmt.Fprintf(&b, "Age: %s\n", ageText(p.Age))
	fmt.Fprintf(&b, "Education: %s\n", orPlaceholder(p.Education))
	fmt.Fprintf(&b, "Occupation: %s\n", orPlaceholder(p.Occupation))
	fmt.Fprintf(&b, "Holland Code: %s\n", orPlaceholder(in.TopThreeCode))
	if codes, ok := models.ParseCode(in.TopThreeCode); ok {
		for i, c := range codes {
			it, _ := models.LookupType(c)
			fmt.Fprintf(&b, "%d. %s (%s): %s\n", i+1, it.Name, it.Code, it.Description)
		}
	}
	return b.String()
}

const summarySystemPrompt = "You are a friendly career counsellor. Write one short paragraph (80-120 words) " +
	"addressed to the respondent by name, explaining what their Holland Code means and suggesting directions " +
	"that fit their education. Plain text only, no lists or headings."

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return strings.TrimSpace(s)
}

func ageText(age int) string {
	if age <= 0 {
		return "not specified"
	}
	return fmt.Sprintf("%d", age)
}
