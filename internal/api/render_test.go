package api

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Disha/internal/models"
	"github.com/soaringjerry/Disha/internal/services"
)

func sampleDoc(t *testing.T) *services.ReportDocument {
	t.Helper()
	done := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sess := &models.Session{
		SessionID:    "render-1",
		Profile:      models.Profile{FullName: "Asha <b>Rai</b>", Education: "bachelors"},
		Status:       models.StatusComplete,
		Scores:       models.Scores{"S": 7, "A": 5, "I": 4, "R": 1},
		TopThreeCode: "SAI",
		StartedAt:    done.Add(-5 * time.Minute),
		CompletedAt:  &done,
	}
	doc, err := services.NewReportAssembler(nil, nil).Assemble(context.Background(), sess)
	require.NoError(t, err)
	return doc
}

func TestRendererFor(t *testing.T) {
	for _, f := range []string{"", "json", "HTML", "markdown", "md", "terminal"} {
		_, ok := RendererFor(f)
		assert.True(t, ok, f)
	}
	_, ok := RendererFor("pdf")
	assert.False(t, ok)
}

func TestMarkdownRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarkdownRenderer{}.Render(&buf, sampleDoc(t)))
	md := buf.String()
	assert.True(t, strings.HasPrefix(md, "# Career Interest Report"))
	assert.Contains(t, md, "**SAI**")
	assert.Contains(t, md, "| 1 | **Social** (S) | 7/7 | 100% |")
	assert.Contains(t, md, "Not specified")
	assert.Contains(t, md, "### Next Steps")
	assert.Less(t, strings.Index(md, "Interest Type 1: Social"), strings.Index(md, "Interest Type 2: Artistic"))
}

func TestHTMLRendererEscapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTMLRenderer{}.Render(&buf, sampleDoc(t)))
	html := buf.String()
	assert.Contains(t, html, "Asha &lt;b&gt;Rai&lt;/b&gt;")
	assert.NotContains(t, html, "<b>Rai</b>")
	assert.Contains(t, html, `class="code">SAI<`)
}

func TestTerminalRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TerminalRenderer{Style: "notty", Width: 80}.Render(&buf, sampleDoc(t)))
	assert.Contains(t, buf.String(), "SAI")
	assert.Contains(t, buf.String(), "Career Interest Report")
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", barWidth), bar(0))
	assert.Equal(t, strings.Repeat("█", barWidth), bar(100))
	assert.Equal(t, strings.Repeat("█", 10)+strings.Repeat("░", 10), bar(50))
}
