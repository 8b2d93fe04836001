package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/a11yscan/internal/browser"
	"github.com/nao1215/a11yscan/internal/engine"
	"github.com/nao1215/a11yscan/internal/model"
)

// Executor scans one target in an already opened execution context.
// It performs no recovery; errors propagate to the caller.
type Executor struct {
	analyzer engine.Analyzer
	sleep    SleepFunc
	now      func() time.Time
	logger   *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithSleep replaces the settle delay implementation.
func WithSleep(sleep SleepFunc) ExecutorOption {
	return func(e *Executor) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithClock replaces the clock used for summary timestamps.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithExecutorLogger sets the logger.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an Executor that analyzes pages with analyzer.
func NewExecutor(analyzer engine.Analyzer, opts ...ExecutorOption) *Executor {
	e := &Executor{
		analyzer: analyzer,
		sleep:    Sleep,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pipeline returns the step pipeline for one target.
func (e *Executor) Pipeline() *Pipeline {
	p := New(WithLogger(e.logger))
	p.AddSteps(
		LoadStep{},
		NewSettleStep(e.sleep),
		NewAnalyzeStep(e.analyzer),
		NewNormalizeStep(e.now),
	)
	return p
}

// Execute loads cfg.Target into page and returns the normalized result.
func (e *Executor) Execute(ctx context.Context, page browser.Page, cfg *model.ScanConfig) (*model.ScanResult, error) {
	state := &ScanState{Config: cfg, Page: page}
	if err := e.Pipeline().Execute(ctx, state); err != nil {
		return nil, err
	}
	return state.Result, nil
}
