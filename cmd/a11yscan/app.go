package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/browser"
	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/engine"
	applog "github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/pipeline"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/nao1215/a11yscan/internal/tools"
)

// app holds the components shared by the serve and scan commands.
type app struct {
	cfg      *config.Config
	log      *applog.Logger
	history  *database.HistoryDB
	scanner  *pipeline.Scanner
	batch    *pipeline.BatchCoordinator
	exporter *report.Exporter
}

// loadConfig resolves the configuration named by the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(getConfigFlag(cmd))
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// setupLogger creates the secure logger. Records always go to stderr because
// stdout carries tool output.
func setupLogger(cfg *config.Config, base slog.Level) (*applog.Logger, error) {
	logger, err := applog.New(os.Stderr, cfg.LogFile, applog.Level(cfg.Verbose, base))
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.Logger)
	return logger, nil
}

// newApp builds the scanning stack from cfg. The caller must call Close.
func newApp(cfg *config.Config, logger *applog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: logger}

	launcher := browser.NewChromeLauncher(
		browser.WithExecPath(cfg.ChromePath),
		browser.WithHeadless(cfg.Headless),
		browser.WithNavigationTimeout(cfg.NavigationTimeout),
		browser.WithLogger(logger.Logger),
	)
	source := engine.NewScriptLoader(cfg.AxeSource,
		engine.WithCacheDir(config.XDGCacheDir()),
		engine.WithLoaderLogger(logger.Logger),
	)
	analyzer := engine.NewAxeAnalyzer(source, engine.WithAnalyzerLogger(logger.Logger))
	executor := pipeline.NewExecutor(analyzer, pipeline.WithExecutorLogger(logger.Logger))

	scannerOpts := []pipeline.ScannerOption{pipeline.WithScannerLogger(logger.Logger)}
	batchOpts := []pipeline.BatchOption{pipeline.WithBatchLogger(logger.Logger)}

	if cfg.HistoryEnabled {
		db, err := database.Open(cfg.HistoryDBPath(), database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		a.history = db
		observer := tools.ScanHistoryObserver(db, logger.Logger)
		scannerOpts = append(scannerOpts, pipeline.WithScannerObserver(observer))
		batchOpts = append(batchOpts, pipeline.WithBatchObserver(observer))
		logger.Debug("history database opened", "path", db.Path())
	}

	a.scanner = pipeline.NewScanner(launcher, executor, scannerOpts...)
	a.batch = pipeline.NewBatchCoordinator(launcher, executor, batchOpts...)
	a.exporter = report.NewExporter(cfg.ResultsDir(), report.WithExportLogger(logger.Logger))
	return a, nil
}

// service returns the tool handlers backed by the app's components.
func (a *app) service() *tools.Service {
	opts := []tools.Option{tools.WithLogger(a.log.Logger)}
	if a.history != nil {
		opts = append(opts, tools.WithExportRecorder(a.history))
	}
	return tools.NewService(a.scanner, a.batch, a.exporter, opts...)
}

// Close releases the history database and the log file.
func (a *app) Close() error {
	var errs []error
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close history database: %w", err))
		}
	}
	if err := a.log.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}
	return errors.Join(errs...)
}
