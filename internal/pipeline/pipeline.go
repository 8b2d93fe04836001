package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/a11yscan/internal/browser"
	"github.com/nao1215/a11yscan/internal/model"
)

// ScanState carries one target through the pipeline.
type ScanState struct {
	// Config is the validated scan configuration.
	Config *model.ScanConfig

	// Page is the execution context the target is loaded into.
	Page browser.Page

	// Raw is the unfiltered engine output, set by the analyze step.
	Raw *model.RawResults

	// Result is the normalized result, set by the normalize step.
	Result *model.ScanResult

	// PerformedSteps lists the steps that completed, in order.
	PerformedSteps []string
}

// Step is one stage of a scan (load, settle, analyze, normalize). Each
// step reads what earlier steps left in the state.
type Step interface {
	// Do runs the step. An error aborts the scan.
	Do(ctx context.Context, state *ScanState) error

	// Name identifies the step in logs and PerformedSteps.
	Name() string
}

// Pipeline runs its steps in order against one ScanState.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger routes step logs to logger instead of slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New returns an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and stops at the first error.
// The context is checked before each step; steps handle their own timeouts.
func (p *Pipeline) Execute(ctx context.Context, state *ScanState) error {
	scanID, target := scanIdentity(state)

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("scan cancelled",
				"step", step.Name(),
				"scan_id", scanID,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"scan_id", scanID,
			"target", target,
		)

		start := time.Now()
		if err := step.Do(ctx, state); err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"scan_id", scanID,
				"target", target,
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"scan_id", scanID,
			"elapsed", time.Since(start),
		)
		state.PerformedSteps = append(state.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount reports how many steps are registered.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames lists step names in run order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}

// scanIdentity returns log identifiers. HTML targets are logged by label,
// never by content.
func scanIdentity(state *ScanState) (scanID, target string) {
	if state == nil || state.Config == nil {
		return "", ""
	}
	return state.Config.ScanID, state.Config.Target.Label()
}
