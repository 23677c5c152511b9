package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/extractor"
	"github.com/amosWeiskopf/seosmith/pkg/fetcher"
	"github.com/amosWeiskopf/seosmith/pkg/scorer"
	"github.com/amosWeiskopf/seosmith/pkg/suggest"
)

// Analyzer turns a URL into a full Analysis. The remote backend client and
// the in-process pipeline both implement it.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (*models.Analysis, error)
}

// Local runs the whole pipeline in process:
// fetch, extract, score, issues, recommendations, suggestions.
type Local struct {
	fetcher   fetcher.Fetcher
	extractor *extractor.Extractor
	scorer    *scorer.Scorer
	engine    *Engine
	strategy  suggest.Strategy
	logger    *slog.Logger
	now       func() time.Time
}

// NewLocal creates a Local analyzer. A nil strategy uses the template strategy.
func NewLocal(f fetcher.Fetcher, e *extractor.Extractor, s *scorer.Scorer, strategy suggest.Strategy, logger *slog.Logger) *Local {
	thresholds := s.Config().Thresholds
	if strategy == nil {
		strategy = suggest.NewTemplate(thresholds)
	}
	return &Local{
		fetcher:   f,
		extractor: e,
		scorer:    s,
		engine:    NewEngine(thresholds),
		strategy:  strategy,
		logger:    logger.With("component", "local_analyzer"),
		now:       time.Now,
	}
}

// Analyze fetches url and analyzes the snapshot
func (l *Local) Analyze(ctx context.Context, url string) (*models.Analysis, error) {
	snap, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return l.AnalyzeSnapshot(snap), nil
}

// AnalyzeSnapshot analyzes an already fetched page
func (l *Local) AnalyzeSnapshot(snap *models.PageSnapshot) *models.Analysis {
	features := l.extractor.Extract(snap)
	score := l.scorer.Score(features)

	analysis := &models.Analysis{
		URL:             snap.URL,
		Features:        features,
		Score:           score,
		Issues:          l.engine.Issues(features, score),
		Recommendations: l.engine.Recommendations(score.Scores),
		Suggestions:     l.strategy.Suggest(features, score),
		Origin:          models.OriginFallback,
		AnalyzedAt:      l.now().UTC(),
	}

	l.logger.Debug("page analyzed",
		"url", snap.URL,
		"overall", score.Overall,
		"grade", score.Grade,
		"issues", len(analysis.Issues),
	)
	return analysis
}
