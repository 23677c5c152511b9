package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

const maxResponseBytes = 5 << 20

// StatusError reports a non-2xx reply from the backend
type StatusError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Path, e.StatusCode, e.Message)
}

// Client talks to an SEO backend over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for baseURL. Deadlines come from the caller's context.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("component", "backend_client", "backend", baseURL),
	}
}

// BaseURL returns the backend root URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze calls POST /analyze
func (c *Client) Analyze(ctx context.Context, url string) (*AnalyzeResponse, error) {
	var out AnalyzeResponse
	if err := c.do(ctx, http.MethodPost, "/analyze", AnalyzeRequest{URL: url}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate calls POST /generate
func (c *Client) Generate(ctx context.Context, url string, platform models.Platform) (*GenerateResponse, error) {
	var out GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/generate", GenerateRequest{URL: url, Platform: platform}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Push calls POST /push
func (c *Client) Push(ctx context.Context, req PushRequest) (*PushResponse, error) {
	var out PushResponse
	if err := c.do(ctx, http.MethodPost, "/push", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e ErrorResponse
		_ = json.Unmarshal(data, &e)
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Message: e.Error}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	c.logger.Debug("backend call", "path", path, "status", resp.StatusCode)
	return nil
}
