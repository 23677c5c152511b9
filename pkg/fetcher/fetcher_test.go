package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seosmith/internal/logging"
	"github.com/amosWeiskopf/seosmith/internal/models"
)

func newTestFetcher(opts Options) *HTTPFetcher {
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 1000
		opts.Burst = 1000
	}
	return New(opts, logging.Discard())
}

func TestFetchSinglePage(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html><head><title>Test Page</title></head><body><h1>Hi</h1></body></html>`))
	}))
	defer server.Close()

	f := newTestFetcher(Options{})
	snap, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "SEOSmith/1.0 (+seo analyzer)", gotUA)
	assert.Equal(t, http.StatusOK, snap.StatusCode)
	assert.Equal(t, server.URL, snap.URL)
	assert.Contains(t, string(snap.Body), "Test Page")
	assert.Equal(t, "text/html", snap.ContentType)
	assert.False(t, snap.FetchedAt.IsZero())
	assert.Greater(t, snap.Elapsed, time.Duration(0))
}

func TestFetchFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>moved</body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	snap, err := newTestFetcher(Options{}).Fetch(context.Background(), server.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/new", snap.FinalURL)
	assert.Equal(t, server.URL+"/new", snap.EffectiveURL())
}

func TestFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			w.Write([]byte("ok"))
		}
	}))
	defer server.Close()

	tests := []struct {
		name       string
		url        string
		timeout    time.Duration
		wantStatus int
	}{
		{"non-success status", server.URL + "/missing", 0, http.StatusNotFound},
		{"timeout", server.URL + "/slow", 50 * time.Millisecond, 0},
		{"connection refused", "http://127.0.0.1:1/", 0, 0},
		{"invalid URL", "not a url", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(Options{Timeout: tt.timeout})
			snap, err := f.Fetch(context.Background(), tt.url)
			assert.Nil(t, snap)

			var fe *models.FetchError
			require.True(t, errors.As(err, &fe), "want FetchError, got %v", err)
			assert.Equal(t, tt.wantStatus, fe.StatusCode)
			assert.Contains(t, fe.Error(), "could not fetch URL")
		})
	}
}

func TestRespectRobotsTxt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			w.Write([]byte("User-agent: *\nDisallow: /private/\nAllow: /public/\n"))
		default:
			w.Write([]byte(`<html><body>page</body></html>`))
		}
	}))
	defer server.Close()

	f := newTestFetcher(Options{RespectRobots: true})

	_, err := f.Fetch(context.Background(), server.URL+"/public/page")
	assert.NoError(t, err)

	_, err = f.Fetch(context.Background(), server.URL+"/private/page")
	var fe *models.FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, errDisallowed)

	lenient := newTestFetcher(Options{})
	_, err = lenient.Fetch(context.Background(), server.URL+"/private/page")
	assert.NoError(t, err)
}

func TestRateLimiting(t *testing.T) {
	var requestTimes []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestTimes = append(requestTimes, time.Now())
		w.Write([]byte(`<html><body>Page</body></html>`))
	}))
	defer server.Close()

	f := New(Options{RequestsPerSecond: 5, Burst: 1}, logging.Discard())

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	}

	require.Len(t, requestTimes, 3)
	for i := 1; i < len(requestTimes); i++ {
		gap := requestTimes[i].Sub(requestTimes[i-1])
		assert.Greater(t, gap.Milliseconds(), int64(150))
	}
}

func TestBodyCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	snap, err := newTestFetcher(Options{MaxBodyBytes: 1024}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, snap.Body, 1024)
}

func TestAgentName(t *testing.T) {
	assert.Equal(t, "SEOSmith", agentName("SEOSmith/1.0 (+seo analyzer)"))
	assert.Equal(t, "bot", agentName("bot"))
	assert.True(t, isWebpageMIME("text/html; charset=utf-8"))
	assert.False(t, isWebpageMIME("image/png"))
}

func BenchmarkFetch(b *testing.B) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Test</title></head><body><p>Content</p></body></html>`))
	}))
	defer server.Close()

	f := New(Options{RequestsPerSecond: 1e6, Burst: 1000}, logging.Discard())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Fetch(context.Background(), server.URL)
	}
}
