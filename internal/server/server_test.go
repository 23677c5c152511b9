package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seosmith/internal/logging"
	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/internal/store"
	"github.com/amosWeiskopf/seosmith/pkg/analyzer"
	"github.com/amosWeiskopf/seosmith/pkg/backend"
	"github.com/amosWeiskopf/seosmith/pkg/connector"
	"github.com/amosWeiskopf/seosmith/pkg/edits"
	"github.com/amosWeiskopf/seosmith/pkg/extractor"
	"github.com/amosWeiskopf/seosmith/pkg/pipeline"
	"github.com/amosWeiskopf/seosmith/pkg/scorer"
	"github.com/amosWeiskopf/seosmith/pkg/writer"
)

const page = `<html lang="en"><head>
<title>Fresh Roasted Coffee Beans Delivered Weekly</title>
<meta name="viewport" content="width=device-width">
</head><body><h1>Coffee</h1><p>Coffee beans roasted every week for coffee lovers.</p></body></html>`

type pageFetcher struct {
	err error
}

func (f pageFetcher) Fetch(_ context.Context, url string) (*models.PageSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PageSnapshot{
		URL:        url,
		Body:       []byte(page),
		StatusCode: 200,
		Elapsed:    800 * time.Millisecond,
		FetchedAt:  time.Now(),
	}, nil
}

type testEnv struct {
	server *Server
	store  *store.Store
}

// newTestEnv wires the full local stack. When pushThrough is set, edits are
// pushed back through the server's own /push route.
func newTestEnv(t *testing.T, f pageFetcher, pushThrough bool) *testEnv {
	t.Helper()
	logger := logging.Discard()

	st, err := store.Open(filepath.Join(t.TempDir(), "seosmith.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ext := extractor.New(extractor.WithLanguageDetection(false), extractor.WithLogger(logger))
	w := writer.New(logger)
	local := pipeline.NewLocal(analyzer.NewLocal(f, ext, scorer.NewDefault(), nil, logger), w)
	svc := pipeline.NewService(pipeline.NewCoordinator(nil, local, logger), w, st, logger)

	env := &testEnv{store: st}
	var pusher connector.Pusher
	if pushThrough {
		ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			env.server.ServeHTTP(rw, r)
		}))
		t.Cleanup(ts.Close)
		pusher = backend.NewClient(ts.URL, ts.Client(), logger)
	}
	mgr := edits.NewManager(st, connector.New(st, pusher, logger), time.Second, logger)

	env.server = New(Config{Service: svc, Edits: mgr, Store: st, Logger: logger, Version: "test"})
	return env
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), "body: %s", rec.Body.String())
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, pageFetcher{}, false)

	rec := doJSON(t, env.server, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got backend.HealthResponse
	decode(t, rec, &got)
	assert.Equal(t, backend.HealthResponse{Status: "healthy", Service: "seosmith", Version: "test"}, got)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestAnalyze(t *testing.T) {
	env := newTestEnv(t, pageFetcher{}, false)

	rec := doJSON(t, env.server, http.MethodPost, "/analyze", `{"url":"Example.com/coffee"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got backend.AnalyzeResponse
	decode(t, rec, &got)
	assert.Equal(t, "https://example.com/coffee", got.URL)
	assert.Equal(t, 200, got.StatusCode)
	require.NotNil(t, got.Scores)
	require.NotNil(t, got.Features)
	assert.Equal(t, scorer.NewDefault().Finalize(*got.Scores).Overall, got.OverallScore)
	assert.NotEmpty(t, got.Grade)
	require.NotEmpty(t, got.Issues)
	assert.Equal(t, models.SeverityCritical, got.Issues[0].Severity)
	assert.NotEmpty(t, got.Suggestions)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		fetcher pageFetcher
		body    string
		status  int
	}{
		{"invalid json", pageFetcher{}, `{`, http.StatusBadRequest},
		{"missing url", pageFetcher{}, `{"url":""}`, http.StatusBadRequest},
		{"bad scheme", pageFetcher{}, `{"url":"ftp://example.com"}`, http.StatusBadRequest},
		{"fetch failure", pageFetcher{err: &models.FetchError{URL: "https://example.com", StatusCode: 503}}, `{"url":"example.com"}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.fetcher, false)
			rec := doJSON(t, env.server, http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var got backend.ErrorResponse
			decode(t, rec, &got)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t, pageFetcher{}, false)

	rec := doJSON(t, env.server, http.MethodPost, "/generate", `{"url":"example.com/coffee","platform":"wordpress"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got backend.GenerateResponse
	decode(t, rec, &got)
	assert.True(t, got.Success)
	require.NotNil(t, got.GeneratedContent)
	assert.NotEmpty(t, got.GeneratedContent.Title.Suggestions)
	require.NotNil(t, got.FormattedContent)
	assert.Equal(t, models.PlatformWordPress, got.FormattedContent.Platform)
	assert.Len(t, got.PlatformFormats, 5)

	rec = doJSON(t, env.server, http.MethodPost, "/generate", `{"url":"example.com","platform":"myspace"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPush(t *testing.T) {
	env := newTestEnv(t, pageFetcher{}, false)

	body := `{"platform":"wordpress","account":{"site_url":"https://acme.example/"},` +
		`"content":{"title":"Fresh Roasted Coffee"},"target":{"post_id":"42"}}`
	rec := doJSON(t, env.server, http.MethodPost, "/push", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got backend.PushResponse
	decode(t, rec, &got)
	assert.True(t, got.Success)
	assert.Equal(t, "Content formatted and prepared for wordpress", got.Message)
	require.NotNil(t, got.PushData)
	assert.Equal(t, "prepared", got.PushData.Status)
	assert.Equal(t, "https://acme.example/wp-json/wp/v2/posts/42", got.PushData.APIEndpoint)
	assert.Contains(t, got.PushData.Note, "Demo mode")

	for _, bad := range []string{
		`{"platform":"myspace","content":{"title":"x"}}`,
		`{"platform":"wordpress","content":{}}`,
	} {
		rec = doJSON(t, env.server, http.MethodPost, "/push", bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func createWebsite(t *testing.T, h http.Handler, platform string) models.Website {
	t.Helper()
	body := fmt.Sprintf(`{"user_id":"u1","url":"https://acme-coffee.com","platform":%q}`, platform)
	rec := doJSON(t, h, http.MethodPost, "/websites", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var site models.Website
	decode(t, rec, &site)
	return site
}

func TestWebsiteLifecycle(t *testing.T) {
	env := newTestEnv(t, pageFetcher{}, false)
	h := env.server

	site := createWebsite(t, h, "WordPress")
	assert.Equal(t, models.PlatformWordPress, site.Platform)

	rec := doJSON(t, h, http.MethodGet, "/websites?user_id=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sites []models.Website
	decode(t, rec, &sites)
	require.Len(t, sites, 1)

	rec = doJSON(t, h, http.MethodPost, "/websites/"+site.ID+"/analyze", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res pipeline.Result
	decode(t, rec, &res)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, "https://acme-coffee.com", res.Analysis.URL)
	require.NotNil(t, res.Formatted)
	assert.Equal(t, models.PlatformWordPress, res.Formatted.Platform)

	rec = doJSON(t, h, http.MethodGet, "/websites/"+site.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var reloaded models.Website
	decode(t, rec, &reloaded)
	assert.NotNil(t, reloaded.LastAnalyzedAt)

	rec = doJSON(t, h, http.MethodGet, "/websites/"+site.ID+"/analyses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var analyses []models.Analysis
	decode(t, rec, &analyses)
	require.Len(t, analyses, 1)
	assert.Equal(t, res.Analysis.ID, analyses[0].ID)

	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodGet, "/websites/missing", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodPost, "/websites/missing/analyze", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodPost, "/websites", `{"user_id":"u1"}`).Code)
}

func TestEditLifecycle(t *testing.T) {
	env := newTestEnv(t, pageFetcher{}, false)
	h := env.server
	site := createWebsite(t, h, "wordpress")
	editsPath := "/websites/" + site.ID + "/edits"

	// No analysis yet, so no suggestion to pick from.
	rec := doJSON(t, h, http.MethodPost, editsPath, `{"field_type":"title","variant":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, doJSON(t, h, http.MethodPost, "/websites/"+site.ID+"/analyze", "").Code)

	rec = doJSON(t, h, http.MethodPost, editsPath, `{"field_type":"title","variant":0}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var fromSuggestion models.EditRecord
	decode(t, rec, &fromSuggestion)
	assert.Equal(t, models.EditPending, fromSuggestion.Status)
	assert.Equal(t, "Fresh Roasted Coffee Beans Delivered Weekly", fromSuggestion.OldValue)
	assert.NotEmpty(t, fromSuggestion.NewValue)

	// Apply without a connected account: applied in demo mode.
	rec = doJSON(t, h, http.MethodPost, "/edits/"+fromSuggestion.ID+"/apply", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var applied edits.ApplyResult
	decode(t, rec, &applied)
	assert.False(t, applied.Verified)
	assert.Equal(t, models.EditApplied, applied.Edit.Status)
	assert.True(t, applied.Edit.Simulated)
	assert.Equal(t, "Title applied in demo mode: could not push to WordPress (no connected account)", applied.Message)

	rec = doJSON(t, h, http.MethodPost, "/edits/"+fromSuggestion.ID+"/apply", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/edits/"+fromSuggestion.ID+"/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, editsPath,
		`{"field_type":"h1","old_value":"Coffee Beans","new_value":"Fresh Roasted Coffee Beans"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var manual models.EditRecord
	decode(t, rec, &manual)

	rec = doJSON(t, h, http.MethodGet, "/edits/"+manual.ID+"/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var preview edits.Preview
	decode(t, rec, &preview)
	assert.Equal(t, "Fresh {+Roasted +}Coffee Beans", preview.Inline)

	rec = doJSON(t, h, http.MethodPost, "/edits/"+manual.ID+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled models.EditRecord
	decode(t, rec, &cancelled)
	assert.Equal(t, models.EditCancelled, cancelled.Status)
	assert.Equal(t, http.StatusConflict, doJSON(t, h, http.MethodPost, "/edits/"+manual.ID+"/cancel", "").Code)

	rec = doJSON(t, h, http.MethodGet, editsPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.EditRecord
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, manual.ID, list[0].ID)

	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodGet, "/edits/missing", "").Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, h, http.MethodPost, "/edits/missing/apply", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodPost, "/websites/missing/edits",
		`{"field_type":"title","new_value":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodPost, editsPath,
		`{"field_type":"footer","new_value":"x"}`).Code)
}

func TestApplyPushesThroughBackend(t *testing.T) {
	env := newTestEnv(t, pageFetcher{}, true)
	h := env.server
	site := createWebsite(t, h, "wordpress")

	rec := doJSON(t, h, http.MethodPost, "/accounts",
		`{"user_id":"u1","platform":"wordpress","access_token":"tok","site_url":"https://acme-coffee.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "tok")

	rec = doJSON(t, h, http.MethodPost, "/websites/"+site.ID+"/edits",
		`{"field_type":"title","old_value":"Coffee","new_value":"Fresh Roasted Coffee"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var e models.EditRecord
	decode(t, rec, &e)

	rec = doJSON(t, h, http.MethodPost, "/edits/"+e.ID+"/apply", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var applied edits.ApplyResult
	decode(t, rec, &applied)
	assert.True(t, applied.Verified)
	assert.False(t, applied.Edit.Simulated)
	assert.Equal(t, "Title pushed to WordPress", applied.Message)
	assert.Contains(t, applied.Edit.PushNote, "Demo mode")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("url", "required"), http.StatusBadRequest},
		{fmt.Errorf("website x: %w", models.ErrNotFound), http.StatusNotFound},
		{models.ErrEditNotPending, http.StatusConflict},
		{&models.FetchError{URL: "https://example.com", StatusCode: 404}, http.StatusBadGateway},
		{&models.PushError{Provider: models.PlatformShopify, Reason: "timed out"}, http.StatusBadGateway},
		{&models.PersistenceError{Op: "save analysis", Err: fmt.Errorf("disk full")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
