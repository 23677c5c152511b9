package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Format is a report output format
type Format string

const (
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported report formats
var Formats = []Format{FormatJSON, FormatHTML, FormatMarkdown}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatHTML, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", models.NewValidationError("format", fmt.Sprintf("unsupported format: %s", s))
}

const (
	strengthScore = 80
	weaknessScore = 60
)

var categoryLabels = map[models.Category]string{
	models.CategoryTitle:       "Title",
	models.CategoryMeta:        "Meta Description",
	models.CategoryContent:     "Content Quality",
	models.CategoryTechnical:   "Technical SEO",
	models.CategoryPerformance: "Performance",
	models.CategorySocial:      "Social Tags",
}

// Reporter renders analyses for people
type Reporter struct {
	html *template.Template
}

// New creates a Reporter
func New() *Reporter {
	return &Reporter{
		html: template.Must(template.New("report").Funcs(template.FuncMap{
			"label": label,
		}).Parse(htmlTemplate)),
	}
}

// Render writes a in the given format
func (r *Reporter) Render(a *models.Analysis, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return r.renderJSON(a)
	case FormatHTML:
		return r.renderHTML(a)
	case FormatMarkdown:
		return r.renderMarkdown(a), nil
	}
	return "", models.NewValidationError("format", fmt.Sprintf("unsupported format: %s", format))
}

// RenderGeneration writes a generation as JSON, or as the requested
// platform's rendering when one was produced.
func (r *Reporter) RenderGeneration(g *models.Generation) (string, error) {
	if g.Formatted != nil {
		switch {
		case g.Formatted.HTML != "":
			return g.Formatted.HTML, nil
		case g.Formatted.Markdown != "":
			return g.Formatted.Markdown, nil
		case g.Formatted.FrontMatter != "":
			return g.Formatted.FrontMatter + g.Formatted.Content, nil
		}
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation: %w", err)
	}
	return string(data), nil
}

func (r *Reporter) renderJSON(a *models.Analysis) (string, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

type scoreRow struct {
	Category models.Category
	Score    int
}

type htmlView struct {
	*models.Analysis
	Rows       []scoreRow
	Strengths  []string
	Weaknesses []string
}

func (r *Reporter) renderHTML(a *models.Analysis) (string, error) {
	strengths, weaknesses := summarize(a.Score.Scores)
	view := htmlView{Analysis: a, Rows: rows(a.Score.Scores), Strengths: strengths, Weaknesses: weaknesses}

	var buf bytes.Buffer
	if err := r.html.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (r *Reporter) renderMarkdown(a *models.Analysis) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# SEO Report for %s\n\n", a.URL)
	fmt.Fprintf(&buf, "*Analyzed on %s (%s)*\n\n", a.AnalyzedAt.Format("January 2, 2006"), a.Origin)

	fmt.Fprintf(&buf, "## Summary\n\n")
	fmt.Fprintf(&buf, "**Overall Grade:** %s (%d/100)\n\n", a.Score.Grade, a.Score.Overall)

	fmt.Fprintf(&buf, "| Category | Score |\n")
	fmt.Fprintf(&buf, "|----------|-------|\n")
	for _, row := range rows(a.Score.Scores) {
		fmt.Fprintf(&buf, "| %s | %d |\n", label(row.Category), row.Score)
	}
	fmt.Fprintf(&buf, "| **Overall** | **%d** |\n\n", a.Score.Overall)

	strengths, weaknesses := summarize(a.Score.Scores)
	writeList(&buf, "Strengths", strengths)
	writeList(&buf, "Areas for Improvement", weaknesses)

	if len(a.Issues) > 0 {
		fmt.Fprintf(&buf, "## Issues\n\n")
		for _, issue := range a.Issues {
			fmt.Fprintf(&buf, "- **%s** (%s): %s\n", issue.Severity, issue.Category, issue.Message)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(a.Recommendations) > 0 {
		fmt.Fprintf(&buf, "## Recommendations\n\n")
		for i, rec := range a.Recommendations {
			fmt.Fprintf(&buf, "### %d. %s\n", i+1, label(rec.Category))
			fmt.Fprintf(&buf, "- **Priority:** %s\n", rec.Priority)
			fmt.Fprintf(&buf, "- **Predicted improvement:** +%d\n", rec.PredictedImprovement)
			fmt.Fprintf(&buf, "- %s\n\n", rec.Suggestion)
		}
	}

	if titles := a.Suggestions.Title.Suggestions; len(titles) > 0 {
		fmt.Fprintf(&buf, "## Suggested Titles\n\n")
		for _, v := range titles {
			fmt.Fprintf(&buf, "- %s (%d chars)\n", v.Content, v.Length)
		}
		fmt.Fprintf(&buf, "\n")
	}

	return buf.String()
}

func writeList(buf *bytes.Buffer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(buf, "### %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(buf, "- %s\n", item)
	}
	fmt.Fprintf(buf, "\n")
}

func rows(s models.Scores) []scoreRow {
	out := make([]scoreRow, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = scoreRow{Category: c, Score: s.Get(c)}
	}
	return out
}

// summarize splits categories into strong and weak ones
func summarize(s models.Scores) (strengths, weaknesses []string) {
	for _, c := range models.Categories {
		switch v := s.Get(c); {
		case v >= strengthScore:
			strengths = append(strengths, fmt.Sprintf("%s (%d)", label(c), v))
		case v < weaknessScore:
			weaknesses = append(weaknesses, fmt.Sprintf("%s (%d)", label(c), v))
		}
	}
	return strengths, weaknesses
}

func label(c models.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>SEO Report - {{.URL}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #333; max-width: 1200px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 2rem; border-radius: 10px; margin-bottom: 2rem; }
        .card { background: white; border-radius: 10px; padding: 1.5rem; margin-bottom: 1.5rem; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .score-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 1rem; }
        .score-item { text-align: center; padding: 1rem; background: #f8f9fa; border-radius: 8px; }
        .score-value { font-size: 2rem; font-weight: bold; color: #667eea; }
        .grade { display: inline-block; padding: 0.5rem 1rem; background: #28a745; color: white; border-radius: 5px; font-weight: bold; }
        .issue { border-left: 4px solid #ffc107; padding: 0.5rem 1rem; margin: 0.5rem 0; }
        .issue.critical { border-left-color: #dc3545; }
        .issue.info { border-left-color: #17a2b8; }
        .badge { display: inline-block; padding: 0.25rem 0.75rem; border-radius: 4px; font-size: 0.85rem; font-weight: bold; color: white; }
        .priority-critical { background: #dc3545; }
        .priority-high { background: #fd7e14; }
        .priority-medium { background: #ffc107; color: #333; }
    </style>
</head>
<body>
    <div class="header">
        <h1>SEO Report for {{.URL}}</h1>
        <p>Analyzed on {{.AnalyzedAt.Format "January 2, 2006"}} ({{.Origin}})</p>
    </div>

    <div class="card">
        <h2>Summary</h2>
        <p>Overall Grade: <span class="grade">{{.Score.Grade}}</span> {{.Score.Overall}}/100</p>
        <div class="score-grid">
            {{range .Rows}}
            <div class="score-item">
                <div class="score-value">{{.Score}}</div>
                <div>{{label .Category}}</div>
            </div>
            {{end}}
        </div>
        {{if .Strengths}}
        <h3>Strengths</h3>
        <ul>{{range .Strengths}}<li>{{.}}</li>{{end}}</ul>
        {{end}}
        {{if .Weaknesses}}
        <h3>Areas for Improvement</h3>
        <ul>{{range .Weaknesses}}<li>{{.}}</li>{{end}}</ul>
        {{end}}
    </div>

    {{if .Issues}}
    <div class="card">
        <h2>Issues</h2>
        {{range .Issues}}
        <div class="issue {{.Severity}}"><strong>{{.Severity}}</strong> {{.Message}}</div>
        {{end}}
    </div>
    {{end}}

    {{if .Recommendations}}
    <div class="card">
        <h2>Recommendations</h2>
        {{range .Recommendations}}
        <div>
            <span class="badge priority-{{.Priority}}">{{.Priority}}</span>
            <h4>{{label .Category}} (+{{.PredictedImprovement}})</h4>
            <p>{{.Suggestion}}</p>
        </div>
        {{end}}
    </div>
    {{end}}
</body>
</html>
`
