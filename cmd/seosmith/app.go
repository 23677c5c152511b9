package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/seosmith/internal/config"
	"github.com/amosWeiskopf/seosmith/internal/logging"
	"github.com/amosWeiskopf/seosmith/internal/store"
	"github.com/amosWeiskopf/seosmith/pkg/analyzer"
	"github.com/amosWeiskopf/seosmith/pkg/backend"
	"github.com/amosWeiskopf/seosmith/pkg/connector"
	"github.com/amosWeiskopf/seosmith/pkg/edits"
	"github.com/amosWeiskopf/seosmith/pkg/extractor"
	"github.com/amosWeiskopf/seosmith/pkg/fetcher"
	"github.com/amosWeiskopf/seosmith/pkg/pipeline"
	"github.com/amosWeiskopf/seosmith/pkg/scorer"
	"github.com/amosWeiskopf/seosmith/pkg/suggest"
	"github.com/amosWeiskopf/seosmith/pkg/writer"
)

// app holds the wired components for one command run
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []io.Closer

	writer  *writer.Writer
	service *pipeline.Service
	store   *store.Store
	edits   *edits.Manager
}

// newApp loads configuration and wires the pipeline. The database is only
// opened when withStore is set.
func newApp(cmd *cobra.Command, withStore bool) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	f := fetcher.New(fetcher.Options{
		Timeout:           cfg.Fetcher.Timeout,
		UserAgent:         cfg.Fetcher.UserAgent,
		RequestsPerSecond: cfg.Fetcher.RequestsPerSecond,
		Burst:             cfg.Fetcher.Burst,
		RespectRobots:     cfg.Fetcher.RespectRobots,
		MaxBodyBytes:      cfg.Fetcher.MaxBodyBytes,
	}, logger)
	sc := scorer.New(cfg.Scoring)
	strategy := suggest.NewTemplate(cfg.Scoring.Thresholds)
	a.writer = writer.New(logger)

	localAnalyzer := analyzer.NewLocal(f, extractor.New(extractor.WithLogger(logger)), sc, strategy, logger)
	local := pipeline.NewLocal(localAnalyzer, a.writer)

	var (
		primary pipeline.Backend
		pusher  connector.Pusher
	)
	if cfg.Backend.URL != "" {
		client := backend.NewClient(cfg.Backend.URL, &http.Client{}, logger)
		primary = pipeline.NewRemote(client, sc, strategy, cfg.Backend.AnalyzeTimeout, cfg.Backend.GenerateTimeout)
		pusher = client
	}
	coordinator := pipeline.NewCoordinator(primary, local, logger)

	var ps pipeline.Store
	if withStore {
		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		a.store = st
		a.closers = append(a.closers, st)
		ps = st

		a.edits = edits.NewManager(st, connector.New(st, pusher, logger), cfg.Backend.PushTimeout, logger)
	}
	a.service = pipeline.NewService(coordinator, a.writer, ps, logger)

	return a, nil
}

// Close releases the store and log output, most recent first
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
