package writer

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// FormatFunc renders a sanitised draft for one platform. It must be pure.
type FormatFunc func(draft models.ContentDraft) (models.PlatformFormat, error)

// Writer holds the registry of platform formatters
type Writer struct {
	formats  map[models.Platform]FormatFunc
	order    []models.Platform
	policy   *bluemonday.Policy
	markdown *converter.Converter
	logger   *slog.Logger
}

// New creates a Writer with the built-in platforms registered
func New(logger *slog.Logger) *Writer {
	w := &Writer{
		formats: make(map[models.Platform]FormatFunc),
		policy:  bluemonday.StrictPolicy(),
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		logger: logger.With("component", "writer"),
	}

	w.Register(models.PlatformWordPress, w.formatWordPress)
	w.Register(models.PlatformShopify, w.formatShopify)
	w.Register(models.PlatformGitHub, w.formatGitHub)
	w.Register(models.PlatformHTML, w.formatHTML)
	w.Register(models.PlatformMarkdown, w.formatMarkdown)
	return w
}

// Register adds or replaces the formatter for a platform
func (w *Writer) Register(platform models.Platform, fn FormatFunc) {
	if _, exists := w.formats[platform]; !exists {
		w.order = append(w.order, platform)
	}
	w.formats[platform] = fn
}

// Platforms lists registered platforms in registration order
func (w *Writer) Platforms() []models.Platform {
	out := make([]models.Platform, len(w.order))
	copy(out, w.order)
	return out
}

// Supports reports whether a formatter is registered for platform
func (w *Writer) Supports(platform models.Platform) bool {
	_, ok := w.formats[platform]
	return ok
}

// Format renders draft for a single platform
func (w *Writer) Format(draft models.ContentDraft, platform models.Platform) (models.PlatformFormat, error) {
	fn, ok := w.formats[platform]
	if !ok {
		return models.PlatformFormat{}, models.NewValidationError("platform", fmt.Sprintf("unsupported platform %q", platform))
	}
	out, err := fn(w.sanitize(draft))
	if err != nil {
		return models.PlatformFormat{}, fmt.Errorf("format %s: %w", platform, err)
	}
	out.Platform = platform
	return out, nil
}

// FormatAll renders draft for every registered platform. A platform whose
// formatter fails is logged and left out.
func (w *Writer) FormatAll(draft models.ContentDraft) map[models.Platform]models.PlatformFormat {
	all := make(map[models.Platform]models.PlatformFormat, len(w.order))
	for _, p := range w.order {
		out, err := w.Format(draft, p)
		if err != nil {
			w.logger.Warn("formatter failed", "platform", p, "error", err)
			continue
		}
		all[p] = out
	}
	return all
}

// sanitize strips markup from every text field of the draft
func (w *Writer) sanitize(d models.ContentDraft) models.ContentDraft {
	return models.ContentDraft{
		Title:           w.plain(d.Title),
		MetaDescription: w.plain(d.MetaDescription),
		H1:              w.plain(d.H1),
		Keyword:         w.plain(d.Keyword),
		Schema:          d.Schema,
	}
}

func (w *Writer) plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(w.policy.Sanitize(s)))
}

// toMarkdown converts article HTML, falling back to its plain text
func (w *Writer) toMarkdown(articleHTML string) string {
	md, err := w.markdown.ConvertString(articleHTML)
	if err != nil {
		w.logger.Warn("markdown conversion failed", "error", err)
		return w.plain(articleHTML)
	}
	return strings.TrimSpace(md)
}
