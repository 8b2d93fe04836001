package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/a11yscan/internal/browser/browsertest"
	"github.com/nao1215/a11yscan/internal/engine/enginetest"
	"github.com/nao1215/a11yscan/internal/model"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// openPage returns a fake page from a fresh fake browser.
func openPage(t *testing.T, l *browsertest.Launcher) *browsertest.Page {
	t.Helper()

	b, err := l.Launch(context.Background())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	p, err := b.NewPage(context.Background(), model.Viewport{Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}
	return p.(*browsertest.Page)
}

func TestLoadStep(t *testing.T) {
	t.Parallel()

	t.Run("navigates URL targets", func(t *testing.T) {
		t.Parallel()

		page := openPage(t, &browsertest.Launcher{})
		cfg, _ := model.NewURLScanConfig("https://example.com/a", model.ScanOptions{})

		if err := (LoadStep{}).Do(context.Background(), &ScanState{Config: cfg, Page: page}); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if got := page.Navigations(); len(got) != 1 || got[0] != "https://example.com/a" {
			t.Errorf("Navigations() = %v", got)
		}
		if len(page.Contents()) != 0 {
			t.Error("URL target must not inject content")
		}
	})

	t.Run("injects HTML targets", func(t *testing.T) {
		t.Parallel()

		page := openPage(t, &browsertest.Launcher{})
		cfg, _ := model.NewHTMLScanConfig("<img src=x>", model.ScanOptions{})

		if err := (LoadStep{}).Do(context.Background(), &ScanState{Config: cfg, Page: page}); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if got := page.Contents(); len(got) != 1 || got[0] != "<img src=x>" {
			t.Errorf("Contents() = %v", got)
		}
		if len(page.Navigations()) != 0 {
			t.Error("HTML target must not navigate")
		}
	})

	t.Run("reports timeouts against the target label", func(t *testing.T) {
		t.Parallel()

		html := "<p>secret content</p>"
		page := openPage(t, &browsertest.Launcher{
			SetContentErr: &model.NavigationTimeoutError{Target: "inline HTML", Timeout: 30 * time.Second},
		})
		cfg, _ := model.NewHTMLScanConfig(html, model.ScanOptions{})

		err := (LoadStep{}).Do(context.Background(), &ScanState{Config: cfg, Page: page})

		var timeoutErr *model.NavigationTimeoutError
		if !errors.As(err, &timeoutErr) {
			t.Fatalf("expected NavigationTimeoutError, got %v", err)
		}
		if timeoutErr.Target != cfg.Target.Label() {
			t.Errorf("Target = %q, want %q", timeoutErr.Target, cfg.Target.Label())
		}
		if strings.Contains(err.Error(), "secret content") {
			t.Error("error message must not contain the HTML content")
		}
	})

	t.Run("wraps untyped failures as browser errors", func(t *testing.T) {
		t.Parallel()

		page := openPage(t, &browsertest.Launcher{
			NavigateErrs: map[string]error{"https://example.com": errors.New("net::ERR_NAME_NOT_RESOLVED")},
		})
		cfg, _ := model.NewURLScanConfig("https://example.com", model.ScanOptions{})

		err := (LoadStep{}).Do(context.Background(), &ScanState{Config: cfg, Page: page})
		if !errors.Is(err, model.ErrBrowser) {
			t.Errorf("expected ErrBrowser, got %v", err)
		}
	})
}

func TestSettleStep(t *testing.T) {
	t.Parallel()

	t.Run("sleeps the configured delay", func(t *testing.T) {
		t.Parallel()

		var slept time.Duration
		step := NewSettleStep(func(_ context.Context, d time.Duration) error {
			slept = d
			return nil
		})
		cfg, _ := model.NewURLScanConfig("https://example.com", model.ScanOptions{WaitForPageLoad: intPtr(750)})

		if err := step.Do(context.Background(), &ScanState{Config: cfg}); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if slept != 750*time.Millisecond {
			t.Errorf("slept %v, want 750ms", slept)
		}
	})

	t.Run("Sleep returns early on cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
			t.Errorf("Sleep() error = %v, want context.Canceled", err)
		}
	})
}

func TestAnalyzeStep(t *testing.T) {
	t.Parallel()

	t.Run("stores raw results and passes options", func(t *testing.T) {
		t.Parallel()

		analyzer := &enginetest.Analyzer{Results: &model.RawResults{PassesCount: 4}}
		cfg, _ := model.NewURLScanConfig("https://example.com", model.ScanOptions{
			AxeOptions: &model.AxeOptions{RunOnly: "wcag2aa"},
		})
		state := &ScanState{Config: cfg}

		if err := NewAnalyzeStep(analyzer).Do(context.Background(), state); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if state.Raw == nil || state.Raw.PassesCount != 4 {
			t.Errorf("Raw = %+v", state.Raw)
		}
		calls := analyzer.Calls()
		if len(calls) != 1 || len(calls[0].Options.Tags) != 1 || calls[0].Options.Tags[0] != "wcag2aa" {
			t.Errorf("Calls() = %+v", calls)
		}
	})

	t.Run("wraps untyped failures as engine errors", func(t *testing.T) {
		t.Parallel()

		analyzer := &enginetest.Analyzer{Err: errors.New("axe is not defined")}
		cfg, _ := model.NewURLScanConfig("https://example.com", model.ScanOptions{})

		err := NewAnalyzeStep(analyzer).Do(context.Background(), &ScanState{Config: cfg})
		if !errors.Is(err, model.ErrEngine) {
			t.Errorf("expected ErrEngine, got %v", err)
		}
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 678901234, time.UTC)

	t.Run("maxResults never bounds the counts", func(t *testing.T) {
		t.Parallel()

		raw := &model.RawResults{
			Violations:      enginetest.Violations(7, model.ImpactSerious),
			PassesCount:     12,
			IncompleteCount: 3,
		}
		cfg, _ := model.NewURLScanConfig("https://example.com", model.ScanOptions{MaxResults: intPtr(2)})

		got := Normalize(raw, cfg, at)

		if len(got.Violations) != 2 {
			t.Errorf("len(Violations) = %d, want 2", len(got.Violations))
		}
		if got.Summary.ViolationsCount != 7 {
			t.Errorf("ViolationsCount = %d, want 7", got.Summary.ViolationsCount)
		}
		if got.Summary.PassesCount != 12 || got.Summary.IncompleteCount != 3 {
			t.Errorf("Summary = %+v", got.Summary)
		}
		if !got.Summary.Timestamp.Equal(at.Truncate(time.Millisecond)) {
			t.Errorf("Timestamp = %v", got.Summary.Timestamp)
		}
	})

	t.Run("node lists are capped", func(t *testing.T) {
		t.Parallel()

		v := enginetest.Violations(1, model.ImpactMinor)[0]
		v.Nodes = append(v.Nodes, v.Nodes[0], v.Nodes[0])
		raw := &model.RawResults{Violations: []model.Violation{v}}
		cfg, _ := model.NewURLScanConfig("https://example.com", model.ScanOptions{MaxResults: intPtr(2)})

		got := Normalize(raw, cfg, at)
		if len(got.Violations[0].Nodes) != 2 {
			t.Errorf("len(Nodes) = %d, want 2", len(got.Violations[0].Nodes))
		}
	})

	tests := []struct {
		name        string
		includeHTML *bool
		wantHTML    bool
	}{
		{name: "HTML stripped by default", includeHTML: nil, wantHTML: false},
		{name: "HTML stripped when disabled", includeHTML: boolPtr(false), wantHTML: false},
		{name: "HTML kept when enabled", includeHTML: boolPtr(true), wantHTML: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := &model.RawResults{Violations: enginetest.Violations(1, model.ImpactCritical)}
			cfg, _ := model.NewURLScanConfig("https://example.com", model.ScanOptions{IncludeHTML: tt.includeHTML})

			got := Normalize(raw, cfg, at)

			hasHTML := got.Violations[0].Nodes[0].HTML != ""
			if hasHTML != tt.wantHTML {
				t.Errorf("node HTML present = %v, want %v", hasHTML, tt.wantHTML)
			}
			if raw.Violations[0].Nodes[0].HTML == "" {
				t.Error("Normalize must not modify the raw results")
			}
		})
	}
}

func TestExecutorExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs all steps against the page", func(t *testing.T) {
		t.Parallel()

		page := openPage(t, &browsertest.Launcher{})
		analyzer := &enginetest.Analyzer{Results: &model.RawResults{
			Violations: enginetest.Violations(3, model.ImpactModerate),
		}}
		var slept time.Duration
		exec := NewExecutor(analyzer,
			WithSleep(func(_ context.Context, d time.Duration) error {
				slept += d
				return nil
			}),
		)
		cfg, _ := model.NewHTMLScanConfig("<main></main>", model.ScanOptions{})

		result, err := exec.Execute(context.Background(), page, cfg)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if result.Summary.ViolationsCount != 3 {
			t.Errorf("ViolationsCount = %d, want 3", result.Summary.ViolationsCount)
		}
		if slept != 2*time.Second {
			t.Errorf("slept %v, want the 2s HTML default", slept)
		}
		if calls := analyzer.Calls(); len(calls) != 1 || calls[0].Page != page {
			t.Errorf("analyzer calls = %+v", calls)
		}
	})

	t.Run("does not analyze after a failed load", func(t *testing.T) {
		t.Parallel()

		page := openPage(t, &browsertest.Launcher{SetContentErr: errors.New("boom")})
		analyzer := &enginetest.Analyzer{}
		exec := NewExecutor(analyzer, WithSleep(func(context.Context, time.Duration) error { return nil }))
		cfg, _ := model.NewHTMLScanConfig("<main></main>", model.ScanOptions{})

		result, err := exec.Execute(context.Background(), page, cfg)
		if err == nil || result != nil {
			t.Fatalf("Execute() = %v, %v; want error", result, err)
		}
		if len(analyzer.Calls()) != 0 {
			t.Error("analyzer must not run after a failed load")
		}
	})

	t.Run("pipeline has the expected steps", func(t *testing.T) {
		t.Parallel()

		names := NewExecutor(&enginetest.Analyzer{}).Pipeline().StepNames()
		want := []string{StepLoad, StepSettle, StepAnalyze, StepNormalize}
		if strings.Join(names, ",") != strings.Join(want, ",") {
			t.Errorf("StepNames() = %v, want %v", names, want)
		}
	})
}
