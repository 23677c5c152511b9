package writer

import (
	"bytes"
	"encoding/json"
	"html/template"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/utils"
)

const defaultTopic = "your topic"

var articleTemplate = template.Must(template.New("article").Parse(`<div class="seo-optimized-content">
<p>Welcome to our comprehensive guide on {{.Keyword}}. This article will help you understand everything you need to know.</p>
<h2>What is {{.Topic}}?</h2>
<p>Learn the fundamentals and key concepts that make {{.Keyword}} essential for your success.</p>
<h2>Benefits of {{.Topic}}</h2>
<ul>
<li>Improved performance and results</li>
<li>Better user experience</li>
<li>Increased efficiency</li>
<li>Cost-effective solutions</li>
</ul>
<h2>How to Get Started</h2>
<p>Follow these simple steps to begin your journey with {{.Keyword}}:</p>
<ol>
<li>Understand your goals and requirements</li>
<li>Research and plan your approach</li>
<li>Implement best practices</li>
<li>Monitor and optimize continuously</li>
</ol>
<h2>Frequently Asked Questions</h2>
<h3>Why is {{.Keyword}} important?</h3>
<p>{{.Topic}} is crucial for achieving better results and staying competitive in today's market.</p>
<h3>How long does it take to see results?</h3>
<p>Results can vary, but most users see improvements within the first few weeks of implementation.</p>
<h2>Conclusion</h2>
<p>Start your {{.Keyword}} journey today and experience the benefits firsthand. Get in touch with us to learn more!</p>
</div>`))

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
{{- if .Title}}
<title>{{.Title}}</title>
{{- end}}
{{- if .Description}}
<meta name="description" content="{{.Description}}">
{{- end}}
{{- if .Title}}
<meta property="og:title" content="{{.Title}}">
{{- end}}
{{- if .Description}}
<meta property="og:description" content="{{.Description}}">
{{- end}}
<meta name="twitter:card" content="summary_large_image">
{{- if .Title}}
<meta name="twitter:title" content="{{.Title}}">
{{- end}}
{{- if .Description}}
<meta name="twitter:description" content="{{.Description}}">
{{- end}}
{{- if .Schema}}
<script type="application/ld+json">{{.Schema}}</script>
{{- end}}
</head>
<body>
{{- if .Heading}}
<h1>{{.Heading}}</h1>
{{- end}}
{{.Article}}
</body>
</html>
`))

// article renders the keyword-driven article body as HTML
func article(keyword string) (string, error) {
	if keyword == "" {
		keyword = defaultTopic
	}
	var buf bytes.Buffer
	err := articleTemplate.Execute(&buf, struct {
		Keyword string
		Topic   string
	}{keyword, utils.TitleCase(keyword)})
	return buf.String(), err
}

// document renders a complete HTML page around the article
func document(d models.ContentDraft, articleHTML string) (string, error) {
	var schema template.JS
	if len(d.Schema) > 0 {
		data, err := json.MarshalIndent(d.Schema, "", "  ")
		if err != nil {
			return "", err
		}
		schema = template.JS(data)
	}

	var buf bytes.Buffer
	err := documentTemplate.Execute(&buf, struct {
		Title       string
		Description string
		Heading     string
		Schema      template.JS
		Article     template.HTML
	}{
		Title:       d.Title,
		Description: d.MetaDescription,
		Heading:     heading(d),
		Schema:      schema,
		Article:     template.HTML(articleHTML),
	})
	return buf.String(), err
}

func heading(d models.ContentDraft) string {
	if d.H1 != "" {
		return d.H1
	}
	return d.Title
}
