package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/amosWeiskopf/seosmith/internal/logging"
	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/backend"
	"github.com/amosWeiskopf/seosmith/pkg/scorer"
	"github.com/amosWeiskopf/seosmith/pkg/suggest"
	"github.com/amosWeiskopf/seosmith/pkg/writer"
)

type stubBackend struct {
	mu       sync.Mutex
	calls    []string
	analysis *models.Analysis
	gen      *models.Generation
	err      error
}

func (s *stubBackend) Analyze(_ context.Context, url string) (*models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, url)
	if s.err != nil {
		return nil, s.err
	}
	a := *s.analysis
	return &a, nil
}

func (s *stubBackend) Generate(_ context.Context, url string, _ models.Platform) (*models.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, url)
	if s.err != nil {
		return nil, s.err
	}
	g := *s.gen
	return &g, nil
}

func sampleAnalysis(url string) *models.Analysis {
	s := scorer.NewDefault()
	features := models.FeatureSet{URL: url, Title: "Coffee", TitleLength: 6, HTTPS: true}
	score := s.Score(features)
	return &models.Analysis{
		URL:         url,
		Features:    features,
		Score:       score,
		Issues:      []models.Issue{},
		Suggestions: suggest.NewTemplate(s.Config().Thresholds).Suggest(features, score),
		AnalyzedAt:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCoordinatorPrimarySuccess(t *testing.T) {
	primary := &stubBackend{analysis: sampleAnalysis("https://example.com/")}
	local := &stubBackend{err: errors.New("must not be called")}

	a, err := NewCoordinator(primary, local, logging.Discard()).Analyze(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, models.OriginPrimary, a.Origin)
	assert.Len(t, primary.calls, 1)
	assert.Empty(t, local.calls)
}

func TestCoordinatorFallsBackOnPrimaryFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "json", slog.LevelDebug)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	primary := &stubBackend{err: context.DeadlineExceeded}
	local := &stubBackend{analysis: sampleAnalysis("https://example.com/")}

	c := NewCoordinator(primary, local, logger, WithTracer(tp.Tracer("test")))
	a, err := c.Analyze(context.Background(), "https://example.com/")
	require.NoError(t, err)

	assert.Equal(t, models.OriginFallback, a.Origin)
	assert.Len(t, primary.calls, 1)
	assert.Len(t, local.calls, 1)
	assert.Contains(t, buf.String(), "primary backend unavailable")
	assert.Contains(t, buf.String(), "backend unavailable: context deadline exceeded")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pipeline.Analyze", spans[0].Name())
	var origin string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "seosmith.origin" {
			origin = kv.Value.AsString()
		}
	}
	assert.Equal(t, "fallback", origin)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "primary_failed", spans[0].Events()[0].Name)
}

func TestCoordinatorWithoutPrimary(t *testing.T) {
	local := &stubBackend{analysis: sampleAnalysis("https://example.com/")}
	a, err := NewCoordinator(nil, local, logging.Discard()).Analyze(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, models.OriginFallback, a.Origin)
}

func TestCoordinatorLocalFailureIsFatal(t *testing.T) {
	fetchErr := &models.FetchError{URL: "https://example.com/", StatusCode: 500}
	primary := &stubBackend{err: errors.New("down")}
	local := &stubBackend{err: fetchErr}

	_, err := NewCoordinator(primary, local, logging.Discard()).Analyze(context.Background(), "https://example.com/")
	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.False(t, errors.Is(err, models.ErrBackendUnavailable))
}

func TestCoordinatorGenerateFallback(t *testing.T) {
	a := sampleAnalysis("https://example.com/")
	local := &stubBackend{gen: &models.Generation{URL: a.URL, Analysis: a, Suggestions: a.Suggestions}}
	primary := &stubBackend{err: errors.New("connection refused")}

	g, err := NewCoordinator(primary, local, logging.Discard()).Generate(context.Background(), a.URL, models.PlatformHTML)
	require.NoError(t, err)
	assert.Equal(t, models.OriginFallback, g.Origin)
	assert.Equal(t, models.OriginFallback, g.Analysis.Origin)
}

func analyzeBody(scores string) string {
	return `{
		"url": "https://example.com/",
		"status_code": 200,
		"load_time": 0.4,
		"overall_score": 99,
		"grade": "A",
		"scores": ` + scores + `,
		"features": {"title": "Coffee Beans", "title_length": 12, "url_has_https": true},
		"issues": [{"type": "warning", "category": "title", "message": "Title too short"}],
		"suggestions": []
	}`
}

func newRemote(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Remote {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := backend.NewClient(server.URL, server.Client(), logging.Discard())
	return NewRemote(client, scorer.NewDefault(), nil, timeout, timeout)
}

func TestRemoteAnalyzeRecomputesOverall(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(analyzeBody(`{"title": 60, "meta": 0, "content": 40, "technical": 40, "performance": 100, "social": 0}`)))
	}, time.Second)

	a, err := r.Analyze(context.Background(), "https://example.com/")
	require.NoError(t, err)

	// 9 + 0 + 10 + 8 + 15 + 0
	assert.Equal(t, 42, a.Score.Overall)
	assert.Equal(t, "C", a.Score.Grade)
	assert.Equal(t, models.OriginPrimary, a.Origin)
	assert.Equal(t, "https://example.com/", a.Features.URL)
	assert.Equal(t, "Coffee Beans", a.Features.Title)
	require.Len(t, a.Issues, 1)
	assert.NotNil(t, a.Recommendations)
	assert.Len(t, a.Suggestions.Title.Suggestions, 3)
}

func TestRemoteAnalyzeRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"score out of range", analyzeBody(`{"title": 160, "meta": 0, "content": 0, "technical": 0, "performance": 0, "social": 0}`)},
		{"negative score", analyzeBody(`{"title": 0, "meta": -1, "content": 0, "technical": 0, "performance": 0, "social": 0}`)},
		{"missing scores", `{"url": "https://example.com/", "features": {}}`},
		{"missing features", `{"url": "https://example.com/", "scores": {}}`},
		{"missing url", `{"scores": {}, "features": {}}`},
		{"unknown severity", `{"url": "u", "scores": {}, "features": {}, "issues": [{"type": "fatal"}]}`},
		{"unknown category", `{"url": "u", "scores": {}, "features": {}, "issues": [{"type": "info", "category": "bogus"}]}`},
		{"missing category", `{"url": "u", "scores": {}, "features": {}, "issues": [{"type": "warning", "message": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
				w.Write([]byte(tt.body))
			}, time.Second)
			_, err := r.Analyze(context.Background(), "https://example.com/")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errMalformed))
		})
	}
}

func TestRemoteAnalyzeOrdersIssuesBySeverity(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{
			"url": "https://example.com/",
			"scores": {"title": 40, "meta": 0, "content": 50, "technical": 60, "performance": 90, "social": 0},
			"features": {"title": "Coffee", "title_length": 6},
			"issues": [
				{"type": "warning", "category": "title", "message": "Title too short"},
				{"type": "critical", "category": "meta", "message": "Missing meta description"},
				{"type": "info", "category": "social", "message": "No Twitter card"},
				{"type": "warning", "category": "content", "message": "Thin content"}
			]
		}`))
	}, time.Second)

	a, err := r.Analyze(context.Background(), "https://example.com/")
	require.NoError(t, err)

	type key struct {
		sev models.Severity
		cat models.Category
	}
	got := make([]key, len(a.Issues))
	for i, is := range a.Issues {
		got[i] = key{is.Severity, is.Category}
	}
	assert.Equal(t, []key{
		{models.SeverityCritical, models.CategoryMeta},
		{models.SeverityWarning, models.CategoryTitle},
		{models.SeverityWarning, models.CategoryContent},
		{models.SeverityInfo, models.CategorySocial},
	}, got)
}

func TestCoordinatorFallsBackOnUnknownIssueCategory(t *testing.T) {
	remote := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{
			"url": "https://example.com/",
			"scores": {"title": 40, "meta": 0, "content": 50, "technical": 60, "performance": 90, "social": 0},
			"features": {},
			"issues": [
				{"type": "warning", "category": "title", "message": "Title too short"},
				{"type": "critical", "category": "meta", "message": "Missing meta description"},
				{"type": "info", "category": "bogus", "message": "?"}
			]
		}`))
	}, time.Second)
	local := &stubBackend{analysis: sampleAnalysis("https://example.com/")}

	a, err := NewCoordinator(remote, local, logging.Discard()).Analyze(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, models.OriginFallback, a.Origin)
	assert.Equal(t, []string{"https://example.com/"}, local.calls)
}

func TestRemoteAnalyzeTimeout(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	_, err := r.Analyze(context.Background(), "https://example.com/")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRemoteGenerate(t *testing.T) {
	bundle := sampleAnalysis("https://example.com/").Suggestions

	t.Run("success", func(t *testing.T) {
		r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
			json.NewEncoder(w).Encode(backend.GenerateResponse{
				Success:          true,
				URL:              "https://example.com/",
				GeneratedContent: &bundle,
				FormattedContent: &models.PlatformFormat{Platform: models.PlatformHTML, HTML: "<html></html>"},
				PlatformFormats: map[models.Platform]models.PlatformFormat{
					models.PlatformHTML: {Platform: models.PlatformHTML, HTML: "<html></html>"},
				},
			})
		}, time.Second)

		g, err := r.Generate(context.Background(), "https://example.com/", models.PlatformHTML)
		require.NoError(t, err)
		assert.Equal(t, models.DraftFromBundle(bundle), g.Draft)
		assert.Equal(t, "<html></html>", g.Formatted.HTML)
		assert.Nil(t, g.Analysis)
	})

	t.Run("backend failure", func(t *testing.T) {
		r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte(`{"success": false, "error": "model not loaded"}`))
		}, time.Second)
		_, err := r.Generate(context.Background(), "https://example.com/", "")
		assert.EqualError(t, err, "backend reported failure: model not loaded")
	})

	t.Run("bundle without variants", func(t *testing.T) {
		tests := []struct {
			name  string
			strip func(b *models.SuggestionBundle)
		}{
			{"no titles", func(b *models.SuggestionBundle) { b.Title.Suggestions = nil }},
			{"no metas", func(b *models.SuggestionBundle) { b.MetaDescription.Suggestions = []models.Variant{} }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				empty := sampleAnalysis("https://example.com/").Suggestions
				tt.strip(&empty)
				r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
					json.NewEncoder(w).Encode(backend.GenerateResponse{
						Success:          true,
						GeneratedContent: &empty,
						PlatformFormats: map[models.Platform]models.PlatformFormat{
							models.PlatformHTML: {Platform: models.PlatformHTML, HTML: "<html></html>"},
						},
					})
				}, time.Second)
				_, err := r.Generate(context.Background(), "https://example.com/", "")
				assert.True(t, errors.Is(err, errMalformed))
			})
		}
	})

	t.Run("missing formats", func(t *testing.T) {
		r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
			json.NewEncoder(w).Encode(backend.GenerateResponse{Success: true, GeneratedContent: &bundle})
		}, time.Second)
		_, err := r.Generate(context.Background(), "https://example.com/", "")
		assert.True(t, errors.Is(err, errMalformed))
	})
}

type fakeStore struct {
	website   *models.Website
	saveErr   error
	markErr   error
	saved     []*models.Analysis
	savedUser string
	marked    time.Time
}

func (f *fakeStore) GetWebsite(_ context.Context, id string) (*models.Website, error) {
	if f.website == nil || f.website.ID != id {
		return nil, models.ErrNotFound
	}
	return f.website, nil
}

func (f *fakeStore) SaveAnalysis(_ context.Context, _ string, userID string, a *models.Analysis) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, a)
	f.savedUser = userID
	return nil
}

func (f *fakeStore) MarkAnalyzed(_ context.Context, _ string, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = at
	return nil
}

func newTestService(local *stubBackend, store Store) *Service {
	w := writer.New(logging.Discard())
	c := NewCoordinator(nil, local, logging.Discard())
	return NewService(c, w, store, logging.Discard())
}

func TestServiceValidatesBeforeWork(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"empty url", Request{}},
		{"blank url", Request{URL: "   "}},
		{"bad scheme", Request{URL: "ftp://example.com"}},
		{"unknown platform", Request{URL: "example.com", Platform: "myspace"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := &stubBackend{analysis: sampleAnalysis("https://example.com/")}
			_, err := newTestService(local, nil).Analyze(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrValidation))
			assert.Empty(t, local.calls)
		})
	}
}

func TestServiceNormalizesAndFormats(t *testing.T) {
	local := &stubBackend{analysis: sampleAnalysis("https://example.com")}
	res, err := newTestService(local, nil).Analyze(context.Background(), Request{
		URL:      "Example.com",
		Platform: models.PlatformShopify,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, local.calls)
	require.NotNil(t, res.Formatted)
	assert.Equal(t, models.PlatformShopify, res.Formatted.Platform)
	assert.NotEmpty(t, res.Formatted.Metafields)
}

func TestServicePersistsWebsiteAnalysis(t *testing.T) {
	store := &fakeStore{website: &models.Website{
		ID: "site-1", UserID: "user-1", URL: "https://example.com/", Platform: models.PlatformWordPress,
	}}
	local := &stubBackend{analysis: sampleAnalysis("https://example.com/")}

	res, err := newTestService(local, store).Analyze(context.Background(), Request{WebsiteID: "site-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/"}, local.calls)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "user-1", store.savedUser)
	assert.Equal(t, res.Analysis.AnalyzedAt, store.marked)
	require.NotNil(t, res.Formatted)
	assert.Equal(t, models.PlatformWordPress, res.Formatted.Platform)
}

func TestServicePersistenceErrors(t *testing.T) {
	site := &models.Website{ID: "site-1", URL: "https://example.com/"}

	t.Run("save failure propagates", func(t *testing.T) {
		store := &fakeStore{website: site, saveErr: errors.New("disk full")}
		local := &stubBackend{analysis: sampleAnalysis("https://example.com/")}
		_, err := newTestService(local, store).Analyze(context.Background(), Request{WebsiteID: "site-1"})

		var pe *models.PersistenceError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "save analysis", pe.Op)
	})

	t.Run("marker failure is only logged", func(t *testing.T) {
		store := &fakeStore{website: site, markErr: errors.New("locked")}
		local := &stubBackend{analysis: sampleAnalysis("https://example.com/")}
		res, err := newTestService(local, store).Analyze(context.Background(), Request{WebsiteID: "site-1"})
		require.NoError(t, err)
		assert.NotNil(t, res.Analysis)
		assert.Len(t, store.saved, 1)
	})

	t.Run("unknown website", func(t *testing.T) {
		local := &stubBackend{analysis: sampleAnalysis("https://example.com/")}
		_, err := newTestService(local, &fakeStore{}).Analyze(context.Background(), Request{WebsiteID: "nope"})
		assert.True(t, errors.Is(err, models.ErrNotFound))
		assert.Empty(t, local.calls)
	})
}

func TestLocalGenerate(t *testing.T) {
	a := sampleAnalysis("https://example.com/")
	l := NewLocal(&stubBackend{analysis: a}, writer.New(logging.Discard()))

	g, err := l.Generate(context.Background(), a.URL, models.PlatformMarkdown)
	require.NoError(t, err)
	assert.Len(t, g.Formats, 5)
	require.NotNil(t, g.Formatted)
	assert.Equal(t, models.PlatformMarkdown, g.Formatted.Platform)
	assert.Equal(t, models.DraftFromBundle(a.Suggestions), g.Draft)
	assert.Equal(t, a.URL, g.Analysis.URL)

	_, err = l.Generate(context.Background(), a.URL, "myspace")
	assert.True(t, errors.Is(err, models.ErrValidation))
}
