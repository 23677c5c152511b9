package writer

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

type frontMatter struct {
	Title       string   `yaml:"title,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
}

func (w *Writer) formatWordPress(d models.ContentDraft) (models.PlatformFormat, error) {
	body, err := article(d.Keyword)
	if err != nil {
		return models.PlatformFormat{}, err
	}
	out := models.PlatformFormat{
		Title:   d.Title,
		Excerpt: d.MetaDescription,
		Content: body,
	}
	if d.Title != "" || d.MetaDescription != "" {
		out.Meta = &models.WordPressMeta{Title: d.Title, MetaDesc: d.MetaDescription}
	}
	return out, nil
}

func (w *Writer) formatShopify(d models.ContentDraft) (models.PlatformFormat, error) {
	var fields []models.Metafield
	if d.Title != "" {
		fields = append(fields, models.Metafield{
			Namespace: "seo", Key: "title", Value: d.Title, Type: "single_line_text_field",
		})
	}
	if d.MetaDescription != "" {
		fields = append(fields, models.Metafield{
			Namespace: "seo", Key: "description", Value: d.MetaDescription, Type: "multi_line_text_field",
		})
	}
	return models.PlatformFormat{Metafields: fields}, nil
}

func (w *Writer) formatGitHub(d models.ContentDraft) (models.PlatformFormat, error) {
	fm := frontMatter{Title: d.Title, Description: d.MetaDescription}
	if d.Keyword != "" {
		fm.Keywords = []string{d.Keyword}
	}
	data, err := yaml.Marshal(fm)
	if err != nil {
		return models.PlatformFormat{}, err
	}

	body, err := article(d.Keyword)
	if err != nil {
		return models.PlatformFormat{}, err
	}
	return models.PlatformFormat{
		FrontMatter: "---\n" + string(data) + "---\n",
		Content:     w.toMarkdown(body),
	}, nil
}

func (w *Writer) formatHTML(d models.ContentDraft) (models.PlatformFormat, error) {
	body, err := article(d.Keyword)
	if err != nil {
		return models.PlatformFormat{}, err
	}
	doc, err := document(d, body)
	if err != nil {
		return models.PlatformFormat{}, err
	}
	return models.PlatformFormat{
		HTML:            doc,
		Title:           d.Title,
		MetaDescription: d.MetaDescription,
	}, nil
}

func (w *Writer) formatMarkdown(d models.ContentDraft) (models.PlatformFormat, error) {
	body, err := article(d.Keyword)
	if err != nil {
		return models.PlatformFormat{}, err
	}

	var b strings.Builder
	if h := heading(d); h != "" {
		b.WriteString("# " + h + "\n\n")
	}
	if d.MetaDescription != "" {
		b.WriteString(d.MetaDescription + "\n\n")
	}
	b.WriteString(w.toMarkdown(body))
	b.WriteString("\n")

	return models.PlatformFormat{
		Markdown:        b.String(),
		Title:           d.Title,
		MetaDescription: d.MetaDescription,
	}, nil
}
