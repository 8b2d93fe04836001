// Package enginetest provides a scripted fake for engine.Analyzer.
package enginetest

import (
	"context"
	"sync"

	"github.com/nao1215/a11yscan/internal/browser"
	"github.com/nao1215/a11yscan/internal/engine"
	"github.com/nao1215/a11yscan/internal/model"
)

// Call records one Analyze invocation.
type Call struct {
	Page    browser.Page
	Options model.AnalyzeOptions
}

// Analyzer is a fake engine.Analyzer.
type Analyzer struct {
	// Results is returned by Analyze when Func is nil.
	Results *model.RawResults

	// Err is returned by Analyze when Func is nil.
	Err error

	// Func, when set, answers every call.
	Func func(ctx context.Context, page browser.Page, opts model.AnalyzeOptions) (*model.RawResults, error)

	mu    sync.Mutex
	calls []Call
}

var _ engine.Analyzer = (*Analyzer)(nil)

// Analyze records the call and returns the scripted answer.
func (a *Analyzer) Analyze(ctx context.Context, page browser.Page, opts model.AnalyzeOptions) (*model.RawResults, error) {
	a.mu.Lock()
	a.calls = append(a.calls, Call{Page: page, Options: opts})
	a.mu.Unlock()

	if a.Func != nil {
		return a.Func(ctx, page, opts)
	}
	if a.Err != nil {
		return nil, a.Err
	}
	if a.Results == nil {
		return &model.RawResults{}, nil
	}
	return a.Results, nil
}

// Calls returns the recorded calls in order.
func (a *Analyzer) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

// Violations builds n violations with the given impact and one node each.
func Violations(n int, impact model.Impact) []model.Violation {
	out := make([]model.Violation, n)
	for i := range out {
		out[i] = model.Violation{
			ID:          "rule-" + string(rune('a'+i%26)),
			Impact:      impact,
			Description: "fake violation",
			HelpURL:     "https://dequeuniversity.com/rules/axe/4.10/fake",
			Nodes: []model.Node{{
				Impact:         impact,
				Target:         []string{"#node"},
				FailureSummary: "Fix this",
				HTML:           "<div id=\"node\"></div>",
			}},
		}
	}
	return out
}
