package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/a11yscan/internal/browser"
	"github.com/nao1215/a11yscan/internal/model"
)

// Analyzer runs accessibility rules against a loaded page.
type Analyzer interface {
	// Analyze evaluates the rules selected by opts against page.
	// Failures are reported as *model.EngineError.
	Analyze(ctx context.Context, page browser.Page, opts model.AnalyzeOptions) (*model.RawResults, error)
}

// ScriptSource provides the axe-core script text.
type ScriptSource interface {
	Script(ctx context.Context) (string, error)
}

// shadowSeparator joins the selector hops of a node inside shadow roots.
const shadowSeparator = " >>> "

const axePresentExpr = `typeof window.axe !== 'undefined'`

// AxeAnalyzer runs axe-core inside the page.
type AxeAnalyzer struct {
	source ScriptSource
	logger *slog.Logger
}

// AnalyzerOption configures an AxeAnalyzer.
type AnalyzerOption func(*AxeAnalyzer)

// WithAnalyzerLogger sets the logger.
func WithAnalyzerLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *AxeAnalyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAxeAnalyzer creates an analyzer that injects the script from source.
func NewAxeAnalyzer(source ScriptSource, opts ...AnalyzerOption) *AxeAnalyzer {
	a := &AxeAnalyzer{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze injects axe-core if needed and runs it against the whole document.
func (a *AxeAnalyzer) Analyze(ctx context.Context, page browser.Page, opts model.AnalyzeOptions) (*model.RawResults, error) {
	if err := a.inject(ctx, page); err != nil {
		return nil, &model.EngineError{Err: err}
	}

	expr, err := runExpression(opts)
	if err != nil {
		return nil, &model.EngineError{Err: err}
	}

	raw, err := page.Evaluate(ctx, expr)
	if err != nil {
		return nil, &model.EngineError{Err: err}
	}

	results, err := parseResults(raw)
	if err != nil {
		return nil, &model.EngineError{Err: err}
	}

	a.logger.Debug("axe run finished",
		"violations", len(results.Violations),
		"passes", results.PassesCount,
		"incomplete", results.IncompleteCount,
	)
	return results, nil
}

// inject evaluates the axe-core script unless the page already has it.
func (a *AxeAnalyzer) inject(ctx context.Context, page browser.Page) error {
	present, err := evaluateBool(ctx, page, axePresentExpr)
	if err != nil {
		return fmt.Errorf("failed to detect axe-core: %w", err)
	}
	if present {
		return nil
	}

	script, err := a.source.Script(ctx)
	if err != nil {
		return err
	}
	if _, err := page.Evaluate(ctx, script+"\n;true"); err != nil {
		return fmt.Errorf("failed to inject axe-core: %w", err)
	}

	present, err = evaluateBool(ctx, page, axePresentExpr)
	if err != nil {
		return fmt.Errorf("failed to detect axe-core: %w", err)
	}
	if !present {
		return errors.New("axe-core script did not define window.axe")
	}
	return nil
}

func evaluateBool(ctx context.Context, page browser.Page, expr string) (bool, error) {
	raw, err := page.Evaluate(ctx, expr)
	if err != nil {
		return false, err
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, fmt.Errorf("unexpected result %s: %w", raw, err)
	}
	return v, nil
}

// axeRunOnly is the runOnly option of axe.run.
type axeRunOnly struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// axeRunOptions is the options argument of axe.run.
type axeRunOptions struct {
	RunOnly axeRunOnly                  `json:"runOnly"`
	Rules   map[string]model.RuleToggle `json:"rules,omitempty"`
}

// runTemplate runs axe and keeps only the fields the result schema needs,
// so passes and incomplete are sent back as counts.
const runTemplate = `(async () => {
  const r = await window.axe.run(document, %s);
  const nodes = (ns) => ns.map((n) => ({
    impact: n.impact,
    target: n.target,
    failureSummary: n.failureSummary,
    html: n.html,
  }));
  return {
    violations: r.violations.map((v) => ({
      id: v.id,
      impact: v.impact,
      description: v.description,
      helpUrl: v.helpUrl,
      nodes: nodes(v.nodes),
    })),
    passesCount: r.passes.length,
    incompleteCount: r.incomplete.length,
  };
})()`

// runExpression builds the axe.run call for opts.
// Rule overrides are passed next to the tag selection and axe applies both.
func runExpression(opts model.AnalyzeOptions) (string, error) {
	tags := opts.Tags
	if len(tags) == 0 {
		tags = model.TagSelection{}.TagNames()
	}

	runOpts := axeRunOptions{
		RunOnly: axeRunOnly{Type: "tag", Values: tags},
	}
	if len(opts.Rules) > 0 {
		runOpts.Rules = make(map[string]model.RuleToggle, len(opts.Rules))
		for id, enabled := range opts.Rules {
			runOpts.Rules[id] = model.RuleToggle{Enabled: enabled}
		}
	}

	data, err := json.Marshal(runOpts)
	if err != nil {
		return "", fmt.Errorf("failed to encode axe options: %w", err)
	}
	return fmt.Sprintf(runTemplate, data), nil
}

type axeNode struct {
	Impact         *string           `json:"impact"`
	Target         []json.RawMessage `json:"target"`
	FailureSummary string            `json:"failureSummary"`
	HTML           string            `json:"html"`
}

type axeViolation struct {
	ID          string    `json:"id"`
	Impact      *string   `json:"impact"`
	Description string    `json:"description"`
	HelpURL     string    `json:"helpUrl"`
	Nodes       []axeNode `json:"nodes"`
}

type axeResults struct {
	Violations      []axeViolation `json:"violations"`
	PassesCount     int            `json:"passesCount"`
	IncompleteCount int            `json:"incompleteCount"`
}

// parseResults converts the JSON returned by runTemplate.
func parseResults(raw []byte) (*model.RawResults, error) {
	var res axeResults
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode axe results: %w", err)
	}

	out := &model.RawResults{
		Violations:      make([]model.Violation, 0, len(res.Violations)),
		PassesCount:     res.PassesCount,
		IncompleteCount: res.IncompleteCount,
	}
	for _, v := range res.Violations {
		violation := model.Violation{
			ID:          v.ID,
			Impact:      parseImpact(v.Impact),
			Description: v.Description,
			HelpURL:     v.HelpURL,
			Nodes:       make([]model.Node, 0, len(v.Nodes)),
		}
		for _, n := range v.Nodes {
			target, err := flattenTarget(n.Target)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", v.ID, err)
			}
			violation.Nodes = append(violation.Nodes, model.Node{
				Impact:         parseImpact(n.Impact),
				Target:         target,
				FailureSummary: n.FailureSummary,
				HTML:           n.HTML,
			})
		}
		out.Violations = append(out.Violations, violation)
	}
	return out, nil
}

// parseImpact maps an axe impact to model.Impact. axe reports null for
// nodes whose checks have no impact.
func parseImpact(s *string) model.Impact {
	if s == nil {
		return model.ImpactUnknown
	}
	impact, err := model.ParseImpact(*s)
	if err != nil {
		return model.ImpactUnknown
	}
	return impact
}

// flattenTarget converts an axe selector list. Entries are either a CSS
// selector or, for nodes inside shadow roots, a list of selectors from the
// outermost host inwards.
func flattenTarget(entries []json.RawMessage) ([]string, error) {
	target := make([]string, 0, len(entries))
	for _, entry := range entries {
		var selector string
		if err := json.Unmarshal(entry, &selector); err == nil {
			target = append(target, selector)
			continue
		}
		var hops []string
		if err := json.Unmarshal(entry, &hops); err != nil {
			return nil, fmt.Errorf("unexpected target %s", entry)
		}
		target = append(target, strings.Join(hops, shadowSeparator))
	}
	return target, nil
}
