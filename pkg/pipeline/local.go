package pipeline

import (
	"context"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/analyzer"
	"github.com/amosWeiskopf/seosmith/pkg/writer"
)

// Backend is what the Coordinator needs from each of its two stages
type Backend interface {
	analyzer.Analyzer
	Generate(ctx context.Context, url string, platform models.Platform) (*models.Generation, error)
}

// Local serves both operations in process
type Local struct {
	analyzer analyzer.Analyzer
	writer   *writer.Writer
}

// NewLocal wraps an in-process analyzer and writer
func NewLocal(a analyzer.Analyzer, w *writer.Writer) *Local {
	return &Local{analyzer: a, writer: w}
}

// Analyze implements analyzer.Analyzer
func (l *Local) Analyze(ctx context.Context, url string) (*models.Analysis, error) {
	return l.analyzer.Analyze(ctx, url)
}

// Generate analyzes url and formats the resulting suggestions
func (l *Local) Generate(ctx context.Context, url string, platform models.Platform) (*models.Generation, error) {
	a, err := l.analyzer.Analyze(ctx, url)
	if err != nil {
		return nil, err
	}

	draft := models.DraftFromBundle(a.Suggestions)
	gen := &models.Generation{
		URL:         a.URL,
		Analysis:    a,
		Suggestions: a.Suggestions,
		Draft:       draft,
		Formats:     l.writer.FormatAll(draft),
		Origin:      a.Origin,
	}
	if platform != "" {
		f, err := l.writer.Format(draft, platform)
		if err != nil {
			return nil, err
		}
		gen.Formatted = &f
	}
	return gen, nil
}
