package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/soaringjerry/Disha/internal/services"
	"github.com/soaringjerry/Disha/internal/utils"
)

// Renderer writes a report document in one output format.
type Renderer interface {
	ContentType() string
	Render(w io.Writer, doc *services.ReportDocument) error
}

// RendererFor resolves a ?format= value. Empty means JSON.
func RendererFor(format string) (Renderer, bool) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return JSONRenderer{}, true
	case "html":
		return HTMLRenderer{}, true
	case "markdown", "md":
		return MarkdownRenderer{}, true
	case "terminal", "term":
		return TerminalRenderer{Style: "notty", Width: 80}, true
	default:
		return nil, false
	}
}

type JSONRenderer struct{}

func (JSONRenderer) ContentType() string { return "application/json" }

func (JSONRenderer) Render(w io.Writer, doc *services.ReportDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

const barWidth = 20

func bar(percent int) string {
	filled := percent * barWidth / 100
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

type MarkdownRenderer struct{}

func (MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }

func (MarkdownRenderer) Render(w io.Writer, doc *services.ReportDocument) error {
	_, err := io.WriteString(w, markdown(doc))
	return err
}

func markdown(doc *services.ReportDocument) string {
	var b strings.Builder
	loc := doc.Locale
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "_%s: %s_\n\n", utils.T(loc, "report.generated_at"), doc.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	for _, sec := range doc.Sections {
		switch sec.Kind {
		case services.SectionCover:
			fmt.Fprintf(&b, "## %s\n\n**%s**\n\n%s\n\n", sec.Title, doc.TopThreeCode, sec.Text)
		case services.SectionProfile:
			fmt.Fprintf(&b, "## %s\n\n", sec.Title)
			for _, f := range sec.Fields {
				fmt.Fprintf(&b, "- **%s:** %s\n", f.Label, f.Value)
			}
			b.WriteString("\n")
		case services.SectionScores:
			fmt.Fprintf(&b, "## %s\n\n", sec.Title)
			fmt.Fprintf(&b, "| %s | %s | %s | %s | |\n|---|---|---|---|---|\n",
				utils.T(loc, "field.rank"), utils.T(loc, "field.type"), utils.T(loc, "field.score"), utils.T(loc, "field.percent"))
			for _, r := range sec.Scores {
				name := r.Name
				if r.Top {
					name = "**" + name + "**"
				}
				fmt.Fprintf(&b, "| %d | %s (%s) | %d/%d | %d%% | `%s` |\n", r.Rank, name, r.Code, r.Score, r.Max, r.Percent, bar(r.Percent))
			}
			b.WriteString("\n")
		case services.SectionTypeDetail:
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", sec.Title, sec.Text)
			if sec.Type != nil {
				list := func(key string, items []string) {
					if len(items) > 0 {
						fmt.Fprintf(&b, "**%s:** %s\n\n", utils.T(loc, key), strings.Join(items, ", "))
					}
				}
				list("report.traits", sec.Type.Traits)
				list("report.abilities", sec.Type.Abilities)
				list("report.careers", sec.Type.Careers)
				list("report.environments", sec.Type.Environments)
			}
		case services.SectionSummary:
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", sec.Title, sec.Text)
			if len(sec.Items) > 0 {
				fmt.Fprintf(&b, "### %s\n\n", utils.T(loc, "report.next_steps"))
				for i, it := range sec.Items {
					fmt.Fprintf(&b, "%d. %s\n", i+1, it)
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// TerminalRenderer styles the Markdown rendition for a terminal.
type TerminalRenderer struct {
	Style string
	Width int
}

func (TerminalRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (t TerminalRenderer) Render(w io.Writer, doc *services.ReportDocument) error {
	style := t.Style
	if style == "" {
		style = "dark"
	}
	width := t.Width
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(markdown(doc))
	if err != nil {
		return fmt.Errorf("render terminal report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

type HTMLRenderer struct{}

func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (HTMLRenderer) Render(w io.Writer, doc *services.ReportDocument) error {
	return reportTemplate.Execute(w, doc)
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"t":    utils.T,
	"join": strings.Join,
}).Parse(`<!doctype html>
<html lang="{{.Locale}}">
<head>
<meta charset="utf-8">
<title>{{.Title}} · {{.Respondent}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:820px;margin:2rem auto;color:#222;line-height:1.5}
section{page-break-after:always;margin-bottom:2rem}
.code{font-size:3rem;font-weight:700;letter-spacing:.3rem}
.bar{background:#eee;border-radius:4px;height:12px;width:100%}
.bar span{display:block;height:12px;border-radius:4px}
table{border-collapse:collapse;width:100%}td,th{padding:.3rem .5rem;text-align:left;border-bottom:1px solid #ddd}
tr.top td{font-weight:600}
</style>
</head>
<body>
{{- $loc := .Locale}}
{{- range .Sections}}
<section class="{{.Kind}}">
<h2>{{.Title}}</h2>
{{- if eq .Kind "cover"}}
<p class="code">{{$.TopThreeCode}}</p>
<p>{{.Text}}</p>
<p><small>{{t $loc "report.generated_at"}}: {{$.GeneratedAt.Format "2006-01-02 15:04 UTC"}}</small></p>
{{- else if eq .Kind "profile"}}
<dl>{{range .Fields}}<dt>{{.Label}}</dt><dd>{{.Value}}</dd>{{end}}</dl>
{{- else if eq .Kind "scores"}}
<table>
<tr><th>{{t $loc "field.rank"}}</th><th>{{t $loc "field.type"}}</th><th>{{t $loc "field.score"}}</th><th>{{t $loc "field.percent"}}</th></tr>
{{- range .Scores}}
<tr{{if .Top}} class="top"{{end}}><td>{{.Rank}}</td><td>{{.Name}} ({{.Code}})</td><td>{{.Score}}/{{.Max}}</td>
<td><div class="bar"><span style="width:{{.Percent}}%;background:{{.Color}}"></span></div>{{.Percent}}%</td></tr>
{{- end}}
</table>
{{- else if eq .Kind "type_detail"}}
<p>{{.Text}}</p>
{{- with .Type}}
<p><strong>{{t $loc "report.traits"}}:</strong> {{join .Traits ", "}}</p>
<p><strong>{{t $loc "report.abilities"}}:</strong> {{join .Abilities ", "}}</p>
<p><strong>{{t $loc "report.careers"}}:</strong> {{join .Careers ", "}}</p>
<p><strong>{{t $loc "report.environments"}}:</strong> {{join .Environments ", "}}</p>
{{- end}}
{{- else if eq .Kind "summary"}}
<p>{{.Text}}</p>
{{- if .Items}}
<h3>{{t $loc "report.next_steps"}}</h3>
<ol>{{range .Items}}<li>{{.}}</li>{{end}}</ol>
{{- end}}
{{- end}}
</section>
{{- end}}
</body>
</html>
`))
