package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/nao1215/a11yscan/internal/engine"
	"github.com/nao1215/a11yscan/internal/model"
)

// Step names.
const (
	StepLoad      = "load"
	StepSettle    = "settle"
	StepAnalyze   = "analyze"
	StepNormalize = "normalize"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the SleepFunc used outside of tests.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// LoadStep navigates to a URL target or injects an HTML target.
type LoadStep struct{}

// Name returns the step name.
func (LoadStep) Name() string { return StepLoad }

// Do loads the target into state.Page.
func (LoadStep) Do(ctx context.Context, state *ScanState) error {
	target := state.Config.Target

	var err error
	if target.IsURL() {
		err = state.Page.Navigate(ctx, target.Value())
	} else {
		err = state.Page.SetContent(ctx, target.Value())
	}
	if err == nil {
		return nil
	}

	var timeoutErr *model.NavigationTimeoutError
	if errors.As(err, &timeoutErr) {
		return &model.NavigationTimeoutError{Target: target.Label(), Timeout: timeoutErr.Timeout}
	}
	if errors.Is(err, model.ErrBrowser) {
		return err
	}
	return &model.BrowserError{Op: "load " + target.Label(), Err: err}
}

// SettleStep waits the configured fixed delay after load.
type SettleStep struct {
	sleep SleepFunc
}

// NewSettleStep creates a SettleStep. A nil sleep uses Sleep.
func NewSettleStep(sleep SleepFunc) *SettleStep {
	if sleep == nil {
		sleep = Sleep
	}
	return &SettleStep{sleep: sleep}
}

// Name returns the step name.
func (s *SettleStep) Name() string { return StepSettle }

// Do sleeps for state.Config.WaitAfterLoad.
func (s *SettleStep) Do(ctx context.Context, state *ScanState) error {
	return s.sleep(ctx, state.Config.WaitAfterLoad)
}

// AnalyzeStep runs the rule engine against the loaded page.
type AnalyzeStep struct {
	analyzer engine.Analyzer
}

// NewAnalyzeStep creates an AnalyzeStep.
func NewAnalyzeStep(analyzer engine.Analyzer) *AnalyzeStep {
	return &AnalyzeStep{analyzer: analyzer}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string { return StepAnalyze }

// Do stores the engine output in state.Raw.
func (s *AnalyzeStep) Do(ctx context.Context, state *ScanState) error {
	raw, err := s.analyzer.Analyze(ctx, state.Page, state.Config.AnalyzeOptions())
	if err != nil {
		if errors.Is(err, model.ErrEngine) {
			return err
		}
		return &model.EngineError{Err: err}
	}
	if raw == nil {
		return &model.EngineError{Err: errors.New("engine returned no results")}
	}
	state.Raw = raw
	return nil
}

// NormalizeStep converts state.Raw into the returned result.
type NormalizeStep struct {
	now func() time.Time
}

// NewNormalizeStep creates a NormalizeStep. A nil now uses time.Now.
func NewNormalizeStep(now func() time.Time) *NormalizeStep {
	if now == nil {
		now = time.Now
	}
	return &NormalizeStep{now: now}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string { return StepNormalize }

// Do stores the normalized result in state.Result.
func (s *NormalizeStep) Do(_ context.Context, state *ScanState) error {
	if state.Raw == nil {
		return &model.EngineError{Err: errors.New("no engine results to normalize")}
	}
	state.Result = Normalize(state.Raw, state.Config, s.now())
	return nil
}

// Normalize builds a ScanResult from raw engine output.
//
// The violation list and each node list are capped at cfg.MaxResults, and
// node HTML is dropped unless cfg.IncludeHTMLSnippets is set. Summary counts
// describe the full engine run. raw is not modified.
func Normalize(raw *model.RawResults, cfg *model.ScanConfig, at time.Time) *model.ScanResult {
	limit := cfg.MaxResults
	if limit <= 0 {
		limit = model.DefaultMaxResults
	}

	kept := raw.Violations
	if len(kept) > limit {
		kept = kept[:limit]
	}

	violations := make([]model.Violation, len(kept))
	for i, v := range kept {
		nodes := v.Nodes
		if len(nodes) > limit {
			nodes = nodes[:limit]
		}
		out := v
		out.Nodes = make([]model.Node, len(nodes))
		for j, n := range nodes {
			n.Target = append([]string(nil), n.Target...)
			if !cfg.IncludeHTMLSnippets {
				n.HTML = ""
			}
			out.Nodes[j] = n
		}
		violations[i] = out
	}

	return &model.ScanResult{
		Summary: model.ScanSummary{
			Timestamp:       at.UTC().Truncate(time.Millisecond),
			ViolationsCount: len(raw.Violations),
			PassesCount:     raw.PassesCount,
			IncompleteCount: raw.IncompleteCount,
		},
		Violations: violations,
	}
}
