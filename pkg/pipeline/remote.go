package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/analyzer"
	"github.com/amosWeiskopf/seosmith/pkg/backend"
	"github.com/amosWeiskopf/seosmith/pkg/scorer"
	"github.com/amosWeiskopf/seosmith/pkg/suggest"
)

var errMalformed = errors.New("malformed backend response")

// Remote adapts the primary SEO backend to the Backend interface. Every
// response is validated and its overall score and grade recomputed locally.
type Remote struct {
	client          *backend.Client
	scorer          *scorer.Scorer
	strategy        suggest.Strategy
	analyzeTimeout  time.Duration
	generateTimeout time.Duration
	now             func() time.Time
}

// NewRemote creates a Remote. Zero timeouts mean the caller's deadline only.
func NewRemote(client *backend.Client, s *scorer.Scorer, strategy suggest.Strategy, analyzeTimeout, generateTimeout time.Duration) *Remote {
	if strategy == nil {
		strategy = suggest.NewTemplate(s.Config().Thresholds)
	}
	return &Remote{
		client:          client,
		scorer:          s,
		strategy:        strategy,
		analyzeTimeout:  analyzeTimeout,
		generateTimeout: generateTimeout,
		now:             time.Now,
	}
}

// Analyze implements analyzer.Analyzer
func (r *Remote) Analyze(ctx context.Context, url string) (*models.Analysis, error) {
	ctx, cancel := withTimeout(ctx, r.analyzeTimeout)
	defer cancel()

	resp, err := r.client.Analyze(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := validateAnalyze(resp); err != nil {
		return nil, err
	}

	features := *resp.Features
	if features.URL == "" {
		features.URL = resp.URL
	}
	score := r.scorer.Finalize(*resp.Scores)

	analysis := &models.Analysis{
		URL:             resp.URL,
		Features:        features,
		Score:           score,
		Issues:          analyzer.SortIssues(resp.Issues),
		Recommendations: resp.Suggestions,
		Suggestions:     r.strategy.Suggest(features, score),
		Origin:          models.OriginPrimary,
		AnalyzedAt:      r.now().UTC(),
	}
	if analysis.Issues == nil {
		analysis.Issues = []models.Issue{}
	}
	if analysis.Recommendations == nil {
		analysis.Recommendations = []models.Recommendation{}
	}
	return analysis, nil
}

// Generate asks the backend for suggestions and platform formats
func (r *Remote) Generate(ctx context.Context, url string, platform models.Platform) (*models.Generation, error) {
	ctx, cancel := withTimeout(ctx, r.generateTimeout)
	defer cancel()

	resp, err := r.client.Generate(ctx, url, platform)
	if err != nil {
		return nil, err
	}
	switch {
	case !resp.Success:
		return nil, fmt.Errorf("backend reported failure: %s", resp.Error)
	case resp.GeneratedContent == nil:
		return nil, fmt.Errorf("%w: missing generated_content", errMalformed)
	case len(resp.GeneratedContent.Title.Suggestions) == 0:
		return nil, fmt.Errorf("%w: no title suggestions", errMalformed)
	case len(resp.GeneratedContent.MetaDescription.Suggestions) == 0:
		return nil, fmt.Errorf("%w: no meta description suggestions", errMalformed)
	case len(resp.PlatformFormats) == 0:
		return nil, fmt.Errorf("%w: missing platform_formats", errMalformed)
	case platform != "" && resp.FormattedContent == nil:
		return nil, fmt.Errorf("%w: missing formatted_content for %s", errMalformed, platform)
	}

	gen := &models.Generation{
		URL:         url,
		Suggestions: *resp.GeneratedContent,
		Draft:       models.DraftFromBundle(*resp.GeneratedContent),
		Formatted:   resp.FormattedContent,
		Formats:     resp.PlatformFormats,
		Origin:      models.OriginPrimary,
	}
	if resp.URL != "" {
		gen.URL = resp.URL
	}
	return gen, nil
}

func validateAnalyze(resp *backend.AnalyzeResponse) error {
	switch {
	case resp.URL == "":
		return fmt.Errorf("%w: missing url", errMalformed)
	case resp.Scores == nil:
		return fmt.Errorf("%w: missing scores", errMalformed)
	case resp.Features == nil:
		return fmt.Errorf("%w: missing features", errMalformed)
	}
	for _, c := range models.Categories {
		if v := resp.Scores.Get(c); v < 0 || v > 100 {
			return fmt.Errorf("%w: %s score %d out of range", errMalformed, c, v)
		}
	}
	for _, is := range resp.Issues {
		if is.Severity.Rank() > models.SeverityInfo.Rank() {
			return fmt.Errorf("%w: unknown issue severity %q", errMalformed, is.Severity)
		}
		if !is.Category.Valid() {
			return fmt.Errorf("%w: unknown issue category %q", errMalformed, is.Category)
		}
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
