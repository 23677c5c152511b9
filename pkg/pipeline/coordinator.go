package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

const tracerName = "github.com/amosWeiskopf/seosmith/pkg/pipeline"

// Coordinator tries the primary backend first and falls back to the local
// pipeline on any primary failure. Both stages return the same types; the
// origin is recorded but nothing branches on it.
type Coordinator struct {
	primary Backend
	local   Backend
	logger  *slog.Logger
	tracer  trace.Tracer
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*Coordinator)

// WithTracer sets the tracer used for coordinator spans
func WithTracer(t trace.Tracer) CoordinatorOption {
	return func(c *Coordinator) {
		c.tracer = t
	}
}

// NewCoordinator creates a Coordinator. primary may be nil, in which case
// every call goes straight to local.
func NewCoordinator(primary, local Backend, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		primary: primary,
		local:   local,
		logger:  logger.With("component", "coordinator"),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze produces an Analysis for url
func (c *Coordinator) Analyze(ctx context.Context, url string) (*models.Analysis, error) {
	ctx, span := c.tracer.Start(ctx, "pipeline.Analyze", trace.WithAttributes(attribute.String("seosmith.url", url)))
	defer span.End()

	if c.primary != nil {
		a, err := c.primary.Analyze(ctx, url)
		if err == nil {
			a.Origin = models.OriginPrimary
			c.finish(span, "analyze", url, a.Origin)
			return a, nil
		}
		c.fallback(span, "analyze", url, err)
	}

	a, err := c.local.Analyze(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	a.Origin = models.OriginFallback
	c.finish(span, "analyze", url, a.Origin)
	return a, nil
}

// Generate produces suggestions and platform formats for url
func (c *Coordinator) Generate(ctx context.Context, url string, platform models.Platform) (*models.Generation, error) {
	ctx, span := c.tracer.Start(ctx, "pipeline.Generate", trace.WithAttributes(
		attribute.String("seosmith.url", url),
		attribute.String("seosmith.platform", string(platform)),
	))
	defer span.End()

	if c.primary != nil {
		g, err := c.primary.Generate(ctx, url, platform)
		if err == nil {
			g.Origin = models.OriginPrimary
			c.finish(span, "generate", url, g.Origin)
			return g, nil
		}
		c.fallback(span, "generate", url, err)
	}

	g, err := c.local.Generate(ctx, url, platform)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	g.Origin = models.OriginFallback
	if g.Analysis != nil {
		g.Analysis.Origin = models.OriginFallback
	}
	c.finish(span, "generate", url, g.Origin)
	return g, nil
}

func (c *Coordinator) fallback(span trace.Span, op, url string, cause error) {
	err := fmt.Errorf("%w: %w", models.ErrBackendUnavailable, cause)
	span.AddEvent("primary_failed", trace.WithAttributes(attribute.String("error", err.Error())))
	c.logger.Warn("primary backend unavailable, using local pipeline",
		"op", op,
		"url", url,
		"error", err,
	)
}

func (c *Coordinator) finish(span trace.Span, op, url string, origin models.Origin) {
	span.SetAttributes(attribute.String("seosmith.origin", string(origin)))
	c.logger.Info("pipeline complete", "op", op, "url", url, "origin", origin)
}
