package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scan option defaults and limits.
const (
	// DefaultViewportWidth and DefaultViewportHeight match a common laptop screen.
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// DefaultURLWaitMs is the post-load settle delay for URL and batch scans.
	DefaultURLWaitMs = 5000

	// DefaultHTMLWaitMs is the post-load settle delay for raw HTML scans.
	// Injected content has no network to wait for, so it settles faster.
	DefaultHTMLWaitMs = 2000

	// DefaultMaxResults bounds the number of returned violations.
	DefaultMaxResults = 50

	// MaxBatchTargets is the largest number of URLs accepted by one batch.
	MaxBatchTargets = 20
)

// Viewport is the browser window size used for one execution context.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ViewportOptions is the caller-supplied viewport; absent fields use defaults.
type ViewportOptions struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

// RuleToggle enables or disables a single engine rule.
type RuleToggle struct {
	Enabled bool `json:"enabled"`
}

// AxeOptions selects the standard to test against and per-rule overrides.
type AxeOptions struct {
	// RunOnly is a single standard from KnownRuleTags. Empty selects the default set.
	RunOnly string `json:"runOnly,omitempty"`

	// Rules maps rule IDs to overrides. They apply in addition to RunOnly.
	Rules map[string]RuleToggle `json:"rules,omitempty"`
}

// ScanOptions holds raw caller options shared by the URL, HTML and batch scans.
// Pointer fields distinguish "absent" (use default) from an explicit value.
type ScanOptions struct {
	WaitForPageLoad *int             `json:"waitForPageLoad,omitempty"`
	Viewport        *ViewportOptions `json:"viewport,omitempty"`
	AxeOptions      *AxeOptions      `json:"axeOptions,omitempty"`
	IncludeHTML     *bool            `json:"includeHtml,omitempty"`
	MaxResults      *int             `json:"maxResults,omitempty"`
}

// AnalyzeOptions is what the rule engine needs to run: the active tags and
// the per-rule overrides. Both are applied independently.
type AnalyzeOptions struct {
	Tags  []string
	Rules map[string]bool
}

// ScanConfig is the validated, normalized configuration for scanning one target.
// It is constructed per request and discarded once the scan completes.
type ScanConfig struct {
	// ScanID uniquely identifies this scan in logs and history.
	ScanID string

	// Target is the URL or HTML content to load.
	Target ScanTarget

	// Viewport is the size of the execution context.
	Viewport Viewport

	// WaitAfterLoad is a fixed settle delay applied after the page reaches network idle.
	WaitAfterLoad time.Duration

	// Tags selects which rules the engine evaluates.
	Tags TagSelection

	// RuleOverrides enables (true) or disables (false) individual rules.
	RuleOverrides map[string]bool

	// IncludeHTMLSnippets keeps node HTML in returned violations.
	IncludeHTMLSnippets bool

	// MaxResults bounds the returned violation list, never the underlying scan.
	MaxResults int
}

// AnalyzeOptions derives the engine options from the configuration.
func (c *ScanConfig) AnalyzeOptions() AnalyzeOptions {
	var rules map[string]bool
	if len(c.RuleOverrides) > 0 {
		rules = make(map[string]bool, len(c.RuleOverrides))
		for id, enabled := range c.RuleOverrides {
			rules[id] = enabled
		}
	}
	return AnalyzeOptions{
		Tags:  c.Tags.TagNames(),
		Rules: rules,
	}
}

// NewURLScanConfig validates a URL scan request.
func NewURLScanConfig(rawURL string, opts ScanOptions) (*ScanConfig, error) {
	if err := validateURL("url", rawURL); err != nil {
		return nil, err
	}
	return newScanConfig(URLTarget(rawURL), DefaultURLWaitMs, opts)
}

// NewHTMLScanConfig validates a raw HTML scan request.
func NewHTMLScanConfig(content string, opts ScanOptions) (*ScanConfig, error) {
	if strings.TrimSpace(content) == "" {
		return nil, newValidationError("html", "HTML content cannot be empty")
	}
	return newScanConfig(HTMLTarget(content), DefaultHTMLWaitMs, opts)
}

// NewBatchScanConfigs validates a batch request and returns one configuration
// per URL in input order. More than MaxBatchTargets URLs is rejected, not truncated.
func NewBatchScanConfigs(urls []string, opts ScanOptions) ([]*ScanConfig, error) {
	if len(urls) == 0 {
		return nil, newValidationError("urls", "at least one URL must be provided")
	}
	if len(urls) > MaxBatchTargets {
		return nil, newValidationError("urls", "maximum %d URLs allowed per batch, got %d", MaxBatchTargets, len(urls))
	}

	configs := make([]*ScanConfig, 0, len(urls))
	for i, rawURL := range urls {
		if err := validateURL(fmt.Sprintf("urls[%d]", i), rawURL); err != nil {
			return nil, err
		}
		cfg, err := newScanConfig(URLTarget(rawURL), DefaultURLWaitMs, opts)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// newScanConfig applies defaults and validates the shared options.
func newScanConfig(target ScanTarget, defaultWaitMs int, opts ScanOptions) (*ScanConfig, error) {
	cfg := &ScanConfig{
		ScanID:        uuid.NewString(),
		Target:        target,
		Viewport:      Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		WaitAfterLoad: time.Duration(defaultWaitMs) * time.Millisecond,
		MaxResults:    DefaultMaxResults,
	}

	if opts.WaitForPageLoad != nil {
		if *opts.WaitForPageLoad <= 0 {
			return nil, newValidationError("waitForPageLoad", "must be a positive integer, got %d", *opts.WaitForPageLoad)
		}
		cfg.WaitAfterLoad = time.Duration(*opts.WaitForPageLoad) * time.Millisecond
	}

	if opts.Viewport != nil {
		if opts.Viewport.Width != nil {
			if *opts.Viewport.Width <= 0 {
				return nil, newValidationError("viewport.width", "must be a positive integer, got %d", *opts.Viewport.Width)
			}
			cfg.Viewport.Width = *opts.Viewport.Width
		}
		if opts.Viewport.Height != nil {
			if *opts.Viewport.Height <= 0 {
				return nil, newValidationError("viewport.height", "must be a positive integer, got %d", *opts.Viewport.Height)
			}
			cfg.Viewport.Height = *opts.Viewport.Height
		}
	}

	if opts.AxeOptions != nil {
		if opts.AxeOptions.RunOnly != "" {
			tag, err := ParseRuleTag(opts.AxeOptions.RunOnly)
			if err != nil {
				return nil, newValidationError("axeOptions.runOnly", "%v", err)
			}
			cfg.Tags = SingleStandard(tag)
		}
		if len(opts.AxeOptions.Rules) > 0 {
			cfg.RuleOverrides = make(map[string]bool, len(opts.AxeOptions.Rules))
			for id, toggle := range opts.AxeOptions.Rules {
				if strings.TrimSpace(id) == "" {
					return nil, newValidationError("axeOptions.rules", "rule ID cannot be empty")
				}
				cfg.RuleOverrides[id] = toggle.Enabled
			}
		}
	}

	if opts.IncludeHTML != nil {
		cfg.IncludeHTMLSnippets = *opts.IncludeHTML
	}

	if opts.MaxResults != nil {
		if *opts.MaxResults <= 0 {
			return nil, newValidationError("maxResults", "must be a positive integer, got %d", *opts.MaxResults)
		}
		cfg.MaxResults = *opts.MaxResults
	}

	return cfg, nil
}

// validateURL accepts only absolute http or https URLs with a host.
func validateURL(field, rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return newValidationError(field, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return newValidationError(field, "must be a valid URL starting with http:// or https://")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return newValidationError(field, "must be a valid URL starting with http:// or https://")
	}
	if u.Host == "" {
		return newValidationError(field, "URL must include a host")
	}
	return nil
}
