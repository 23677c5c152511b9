package fetcher

import (
	"context"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Fetcher retrieves a single page for analysis
type Fetcher interface {
	// Fetch downloads url and returns an immutable snapshot, or a *models.FetchError
	Fetch(ctx context.Context, url string) (*models.PageSnapshot, error)
}

// Options contains configuration for the fetcher
type Options struct {
	Timeout           time.Duration // Per-request timeout
	UserAgent         string        // Identifying user agent string
	RequestsPerSecond float64       // Process-wide rate limit
	Burst             int           // Rate limiter burst
	RespectRobots     bool          // Refuse pages disallowed by robots.txt
	MaxBodyBytes      int64         // Response body cap
}

// DefaultOptions returns the standard fetch settings
func DefaultOptions() Options {
	return Options{
		Timeout:           15 * time.Second,
		UserAgent:         "SEOSmith/1.0 (+seo analyzer)",
		RequestsPerSecond: 5,
		Burst:             5,
		MaxBodyBytes:      10 << 20,
	}
}
