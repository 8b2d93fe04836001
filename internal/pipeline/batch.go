package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/nao1215/a11yscan/internal/browser"
	"github.com/nao1215/a11yscan/internal/model"
)

// BatchCoordinator scans several URL targets with one shared browser.
//
// Targets are processed strictly in sequence. Each gets its own execution
// context, which is closed before the next one is opened. A failure or panic
// while scanning one target is recorded in that target's BatchResult and the
// loop moves on.
type BatchCoordinator struct {
	launcher browser.Launcher
	executor *Executor
	observer Observer
	logger   *slog.Logger
}

// BatchOption configures a BatchCoordinator.
type BatchOption func(*BatchCoordinator)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(c *BatchCoordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBatchObserver registers an observer called after each target.
func WithBatchObserver(observer Observer) BatchOption {
	return func(c *BatchCoordinator) {
		c.observer = observer
	}
}

// NewBatchCoordinator creates a BatchCoordinator.
func NewBatchCoordinator(launcher browser.Launcher, executor *Executor, opts ...BatchOption) *BatchCoordinator {
	c := &BatchCoordinator{
		launcher: launcher,
		executor: executor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run scans every configuration and returns one result per configuration,
// in input order. The only error returned is a failure to launch the
// browser; per-target failures are reported inside the results.
func (c *BatchCoordinator) Run(ctx context.Context, configs []*model.ScanConfig) ([]model.BatchResult, error) {
	c.logger.Info("starting batch", "total_targets", len(configs))
	startTime := time.Now()

	b, err := c.launcher.Launch(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrBrowser) {
			err = &model.BrowserError{Op: "launch", Err: err}
		}
		return nil, err
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			c.logger.Warn("failed to close browser", "error", cerr)
		}
	}()

	results := make([]model.BatchResult, len(configs))
	succeeded := 0
	for i, cfg := range configs {
		c.logger.Info("scanning target",
			"scan_id", cfg.ScanID,
			"target", cfg.Target.Label(),
			"index", i+1,
			"total", len(configs),
		)

		result, err := c.scanOne(ctx, b, cfg)
		if err != nil {
			c.logger.Warn("target failed", "scan_id", cfg.ScanID, "target", cfg.Target.Label(), "error", err)
			results[i] = model.FailedBatchResult(cfg.Target.Label(), err)
		} else {
			succeeded++
			results[i] = model.SucceededBatchResult(cfg.Target.Label(), result)
		}

		if c.observer != nil {
			c.observer(ctx, cfg, result, err)
		}
	}

	c.logger.Info("batch complete",
		"total_targets", len(configs),
		"succeeded", succeeded,
		"elapsed", time.Since(startTime),
	)
	return results, nil
}

// scanOne scans cfg in a fresh execution context. A panic inside the scan is
// converted into an error; the context is still closed by WithPage.
func (c *BatchCoordinator) scanOne(ctx context.Context, b browser.Browser, cfg *model.ScanConfig) (*model.ScanResult, error) {
	var result *model.ScanResult
	var err error

	recovered := panics.Try(func() {
		err = browser.WithPage(ctx, b, cfg.Viewport, func(p browser.Page) error {
			var execErr error
			result, execErr = c.executor.Execute(ctx, p, cfg)
			return execErr
		})
	})
	if recovered != nil {
		c.logger.Error("recovered from panic", "scan_id", cfg.ScanID, "stack", string(recovered.Stack))
		return nil, fmt.Errorf("unexpected failure scanning %s: panic: %v", cfg.Target.Label(), recovered.Value)
	}

	if err != nil && result != nil {
		c.logger.Warn("failed to close execution context", "scan_id", cfg.ScanID, "error", err)
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
