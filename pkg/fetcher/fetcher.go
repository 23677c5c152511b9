package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

var errDisallowed = errors.New("disallowed by robots.txt")

// HTTPFetcher fetches pages over HTTP with a shared rate limit
type HTTPFetcher struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates an HTTPFetcher. Zero option values fall back to DefaultOptions.
func New(opts Options, logger *slog.Logger) *HTTPFetcher {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = def.RequestsPerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = def.Burst
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = def.MaxBodyBytes
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}

	return &HTTPFetcher{
		opts:    opts,
		client:  &http.Client{Transport: transport, Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		logger:  logger.With("component", "fetcher"),
	}
}

// SetRateLimit sets the requests per second limit
func (f *HTTPFetcher) SetRateLimit(requestsPerSecond float64) {
	f.limiter.SetLimit(rate.Limit(requestsPerSecond))
}

// Fetch downloads pageURL. Network errors, timeouts, non-2xx responses and
// robots.txt refusals all return a *models.FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*models.PageSnapshot, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return nil, &models.FetchError{URL: pageURL, Err: fmt.Errorf("invalid URL")}
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &models.FetchError{URL: pageURL, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	if f.opts.RespectRobots && !f.isAllowedByRobots(ctx, u) {
		f.logger.Info("skipped page", "url", pageURL, "reason", "robots.txt")
		return nil, &models.FetchError{URL: pageURL, Err: errDisallowed}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &models.FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("fetch failed", "url", pageURL, "error", err)
		return nil, &models.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("non-success status", "url", pageURL, "status", resp.StatusCode)
		return nil, &models.FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, &models.FetchError{URL: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}
	elapsed := time.Since(start)

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !isWebpageMIME(contentType) {
		f.logger.Warn("non-webpage MIME", "url", pageURL, "content_type", contentType)
	}

	f.logger.Debug("fetched page", "url", pageURL, "status", resp.StatusCode, "bytes", len(body), "elapsed", elapsed)

	return &models.PageSnapshot{
		URL:         pageURL,
		FinalURL:    resp.Request.URL.String(),
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Elapsed:     elapsed,
		FetchedAt:   start.UTC(),
	}, nil
}

// isAllowedByRobots reports whether the configured agent may fetch u.
// A missing or unreadable robots.txt allows everything.
func (f *HTTPFetcher) isAllowedByRobots(ctx context.Context, u *url.URL) bool {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return robots.TestAgent(path, agentName(f.opts.UserAgent))
}

// agentName returns the product token of a user agent string
func agentName(userAgent string) string {
	name, _, _ := strings.Cut(userAgent, "/")
	return strings.TrimSpace(name)
}

func isWebpageMIME(contentType string) bool {
	mimeType := strings.TrimSpace(strings.Split(strings.ToLower(contentType), ";")[0])
	webpageMIMEs := []string{"text/html", "application/xhtml+xml", "application/xhtml", "text/xml", "application/xml"}
	for _, mime := range webpageMIMEs {
		if mime == mimeType {
			return true
		}
	}
	return false
}
