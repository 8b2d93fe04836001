package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/a11yscan/internal/browser"
	"github.com/nao1215/a11yscan/internal/model"
)

// Observer is notified after each target finishes, successfully or not.
// Exactly one of result and err is non-nil.
type Observer func(ctx context.Context, cfg *model.ScanConfig, result *model.ScanResult, err error)

// Scanner runs single URL and HTML scans, each in its own browser process.
type Scanner struct {
	launcher browser.Launcher
	executor *Executor
	observer Observer
	logger   *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithScannerLogger sets the logger.
func WithScannerLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScannerObserver registers an observer for finished scans.
func WithScannerObserver(observer Observer) ScannerOption {
	return func(s *Scanner) {
		s.observer = observer
	}
}

// NewScanner creates a Scanner.
func NewScanner(launcher browser.Launcher, executor *Executor, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		launcher: launcher,
		executor: executor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan launches a browser, scans cfg.Target in a fresh execution context and
// releases both. Every error is typed with a model error kind.
func (s *Scanner) Scan(ctx context.Context, cfg *model.ScanConfig) (*model.ScanResult, error) {
	s.logger.Info("scan started", "scan_id", cfg.ScanID, "target", cfg.Target.Label())

	var result *model.ScanResult
	err := browser.WithBrowser(ctx, s.launcher, func(b browser.Browser) error {
		return browser.WithPage(ctx, b, cfg.Viewport, func(p browser.Page) error {
			var err error
			result, err = s.executor.Execute(ctx, p, cfg)
			return err
		})
	})

	switch {
	case err != nil && result != nil:
		// The scan finished; only releasing the browser failed.
		s.logger.Warn("failed to release browser", "scan_id", cfg.ScanID, "error", err)
		err = nil
	case err != nil:
		s.logger.Warn("scan failed", "scan_id", cfg.ScanID, "target", cfg.Target.Label(), "error", err)
		result = nil
	default:
		s.logger.Info("scan completed",
			"scan_id", cfg.ScanID,
			"violations", result.Summary.ViolationsCount,
		)
	}

	if s.observer != nil {
		s.observer(ctx, cfg, result, err)
	}
	return result, err
}
