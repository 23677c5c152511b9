package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/utils"
	"github.com/amosWeiskopf/seosmith/pkg/writer"
)

// Store persists analysis results against a website
type Store interface {
	GetWebsite(ctx context.Context, id string) (*models.Website, error)
	SaveAnalysis(ctx context.Context, websiteID, userID string, a *models.Analysis) error
	MarkAnalyzed(ctx context.Context, websiteID string, at time.Time) error
}

// Request describes one analysis run. URL may be omitted when WebsiteID is set.
type Request struct {
	URL       string          `json:"url"`
	WebsiteID string          `json:"website_id,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
	Platform  models.Platform `json:"platform,omitempty"`
}

// Result is an Analysis plus the optional rendering for the requested platform
type Result struct {
	Analysis  *models.Analysis       `json:"analysis"`
	Formatted *models.PlatformFormat `json:"formatted_content,omitempty"`
}

// Service validates requests, runs the coordinator and persists results
type Service struct {
	coordinator *Coordinator
	writer      *writer.Writer
	store       Store
	logger      *slog.Logger
}

// NewService creates a Service. store may be nil when nothing is persisted.
func NewService(c *Coordinator, w *writer.Writer, store Store, logger *slog.Logger) *Service {
	return &Service{
		coordinator: c,
		writer:      w,
		store:       store,
		logger:      logger.With("component", "analysis_service"),
	}
}

// Analyze runs one analysis. Invalid input fails before any fetch; a failed
// insert is returned as a PersistenceError.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	if req.Platform != "" && !s.writer.Supports(req.Platform) {
		return nil, models.NewValidationError("platform", fmt.Sprintf("unsupported platform %q", req.Platform))
	}

	if req.WebsiteID != "" {
		if s.store == nil {
			return nil, models.NewValidationError("website_id", "no store configured")
		}
		site, err := s.store.GetWebsite(ctx, req.WebsiteID)
		if err != nil {
			return nil, err
		}
		if req.URL == "" {
			req.URL = site.URL
		}
		if req.UserID == "" {
			req.UserID = site.UserID
		}
		if req.Platform == "" && s.writer.Supports(site.Platform) {
			req.Platform = site.Platform
		}
	}

	url, err := utils.NormalizeURL(req.URL)
	if err != nil {
		return nil, err
	}

	a, err := s.coordinator.Analyze(ctx, url)
	if err != nil {
		return nil, err
	}
	result := &Result{Analysis: a}

	if req.Platform != "" {
		f, err := s.writer.Format(models.DraftFromBundle(a.Suggestions), req.Platform)
		if err != nil {
			return nil, err
		}
		result.Formatted = &f
	}

	if req.WebsiteID != "" {
		if err := s.store.SaveAnalysis(ctx, req.WebsiteID, req.UserID, a); err != nil {
			return nil, asPersistence("save analysis", err)
		}
		if err := s.store.MarkAnalyzed(ctx, req.WebsiteID, a.AnalyzedAt); err != nil {
			s.logger.Warn("failed to update last analyzed time", "website_id", req.WebsiteID, "error", err)
		}
	}

	s.logger.Info("analysis complete",
		"url", url,
		"overall", a.Score.Overall,
		"grade", a.Score.Grade,
		"origin", a.Origin,
	)
	return result, nil
}

// Generate validates the input and produces suggestions and platform formats
func (s *Service) Generate(ctx context.Context, rawURL string, platform models.Platform) (*models.Generation, error) {
	if platform != "" && !s.writer.Supports(platform) {
		return nil, models.NewValidationError("platform", fmt.Sprintf("unsupported platform %q", platform))
	}
	url, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	return s.coordinator.Generate(ctx, url, platform)
}

func asPersistence(op string, err error) error {
	var pe *models.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &models.PersistenceError{Op: op, Err: err}
}
