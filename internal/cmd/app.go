package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/methodmap/internal/config"
	"github.com/runger/methodmap/internal/logging"
	"github.com/runger/methodmap/internal/pdftext"
	"github.com/runger/methodmap/internal/pipeline"
	"github.com/runger/methodmap/internal/provider"
	"github.com/runger/methodmap/internal/runs"
	"github.com/runger/methodmap/internal/sanitize"
	"github.com/runger/methodmap/internal/scholar"
)

// app holds everything a command needs, built once from configuration.
type app struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	registry  *provider.Registry
	store     runs.Store
	extractor *pipeline.Extractor
	closeLog  func() error
}

// newApp is swapped out in tests.
var newApp = openApp

// openApp loads configuration and wires logging, the run store, the model
// provider and the extraction pipeline.
func openApp() (*app, error) {
	paths := config.DefaultPaths()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := logging.Setup(logging.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.LogFile(paths),
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	store, err := runs.Open(cfg.Runs.Backend, cfg.RunsDir(paths), paths.RunsDatabase())
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	registry, err := provider.FromConfig(cfg.Model, logger)
	if err != nil {
		_ = store.Close()
		_ = closeLog()
		return nil, fmt.Errorf("failed to configure model provider: %w", err)
	}

	a := &app{
		cfg:      cfg,
		paths:    paths,
		logger:   logger,
		registry: registry,
		store:    store,
		closeLog: closeLog,
	}
	a.extractor = newExtractor(cfg, registry, store, logger)
	return a, nil
}

// newExtractor builds the pipeline. A missing model backend is logged and
// left nil; extraction then reports it per result.
func newExtractor(cfg *config.Config, registry *provider.Registry, store runs.Store, logger *slog.Logger) *pipeline.Extractor {
	p, err := registry.GetBest()
	if err != nil {
		logger.Warn("no model provider available", "preferred", registry.GetPreferred(), "error", err)
	} else {
		logger.Debug("model provider selected", "provider", p.Name())
	}

	// Prompts for a local backend never leave the machine, so source text is
	// passed through unchanged.
	var san *sanitize.Sanitizer
	if cfg.Privacy.SanitizeAICalls && p != nil && provider.IsRemote(p) {
		san = sanitize.NewSanitizer()
		logger.Debug("redacting prompts for remote provider", "provider", p.Name())
	}

	return &pipeline.Extractor{
		Fetcher: scholar.NewClient(scholar.Options{
			BaseURL: cfg.Search.BaseURL,
			APIKey:  cfg.Search.APIKey,
			Timeout: time.Duration(cfg.Search.TimeoutSecs) * time.Second,
			Logger:  logger,
		}),
		Provider:  p,
		Store:     store,
		History:   pipeline.NewHistory(pipeline.DefaultHistorySize),
		Sanitizer: san,
		Logger:    logger,
		PDF:       pdftext.Options{MinChars: cfg.PDF.MinChars, MaxChars: cfg.PDF.MaxChars},
		Limit:     cfg.Search.Limit,
	}
}

// Close releases the run store and the log file.
func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.closeLog != nil {
		errs = append(errs, a.closeLog())
	}
	return errors.Join(errs...)
}

// commandContext returns the command's context cancelled on Ctrl+C.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
