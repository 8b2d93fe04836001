package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/tools"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Scan web pages or an HTML file for accessibility violations",
		Long: `Scan loads each target in headless Chromium, runs axe-core and prints the
result as JSON. One URL runs a single scan; several URLs share one browser
and are scanned in order, and a failure on one URL does not stop the rest.

Examples:
  # Scan a single page
  a11yscan scan https://example.com

  # Scan several pages against WCAG 2.1 AA only
  a11yscan scan --run-only wcag21aa https://example.com https://example.org

  # Scan a local HTML file, keeping node HTML in the output
  a11yscan scan --html-file page.html --include-html

  # Disable a rule
  a11yscan scan --disable-rule color-contrast https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	cmd.Flags().String("html-file", "",
		"Scan the HTML content of this file instead of URLs")
	cmd.Flags().Int("wait", 0,
		fmt.Sprintf("Settle delay in milliseconds after load (default %d for URLs, %d for HTML)",
			model.DefaultURLWaitMs, model.DefaultHTMLWaitMs))
	cmd.Flags().Int("width", model.DefaultViewportWidth, "Viewport width in pixels")
	cmd.Flags().Int("height", model.DefaultViewportHeight, "Viewport height in pixels")
	cmd.Flags().String("run-only", "",
		"Evaluate only rules tagged with this standard ("+ruleTagList()+")")
	cmd.Flags().StringSlice("enable-rule", nil, "Rule IDs to enable")
	cmd.Flags().StringSlice("disable-rule", nil, "Rule IDs to disable")
	cmd.Flags().Bool("include-html", false, "Keep the HTML of affected nodes in the output")
	cmd.Flags().Int("max-results", model.DefaultMaxResults, "Maximum number of violations to report")

	return cmd
}

// ruleTagList returns the accepted --run-only values.
func ruleTagList() string {
	names := make([]string, 0, len(model.KnownRuleTags))
	for _, tag := range model.KnownRuleTags {
		names = append(names, string(tag))
	}
	return strings.Join(names, ", ")
}

// scanRequest is the parsed form of the scan command line.
type scanRequest struct {
	urls    []string
	html    string
	isHTML  bool
	options model.ScanOptions
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	req, err := buildScanRequest(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := setupLogger(cfg, slog.LevelWarn)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		_ = logger.Close()
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("cleanup failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd.OutOrStdout(), a.scanner, a.batch, req)
}

// buildScanRequest reads targets and scan options from the command line.
// Options the user did not set are left nil so the scan defaults apply.
func buildScanRequest(cmd *cobra.Command, args []string) (*scanRequest, error) {
	flags := cmd.Flags()
	req := &scanRequest{urls: args}

	htmlFile, err := flags.GetString("html-file")
	if err != nil {
		return nil, err
	}
	if htmlFile != "" {
		if len(args) > 0 {
			return nil, errors.New("--html-file cannot be combined with URL arguments")
		}
		content, err := os.ReadFile(htmlFile) //nolint:gosec // user-specified input file
		if err != nil {
			return nil, fmt.Errorf("failed to read HTML file: %w", err)
		}
		req.html = string(content)
		req.isHTML = true
	} else if len(args) == 0 {
		return nil, errors.New("no targets provided (specify one or more URLs, or --html-file)")
	}

	intFlag := func(name string) (*int, error) {
		if !flags.Changed(name) {
			return nil, nil
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}

	if req.options.WaitForPageLoad, err = intFlag("wait"); err != nil {
		return nil, err
	}
	if req.options.MaxResults, err = intFlag("max-results"); err != nil {
		return nil, err
	}

	width, err := intFlag("width")
	if err != nil {
		return nil, err
	}
	height, err := intFlag("height")
	if err != nil {
		return nil, err
	}
	if width != nil || height != nil {
		req.options.Viewport = &model.ViewportOptions{Width: width, Height: height}
	}

	if flags.Changed("include-html") {
		includeHTML, err := flags.GetBool("include-html")
		if err != nil {
			return nil, err
		}
		req.options.IncludeHTML = &includeHTML
	}

	axe, err := buildAxeOptions(cmd)
	if err != nil {
		return nil, err
	}
	req.options.AxeOptions = axe

	return req, nil
}

// buildAxeOptions collects --run-only and the rule toggles.
func buildAxeOptions(cmd *cobra.Command) (*model.AxeOptions, error) {
	runOnly, err := cmd.Flags().GetString("run-only")
	if err != nil {
		return nil, err
	}
	enable, err := cmd.Flags().GetStringSlice("enable-rule")
	if err != nil {
		return nil, err
	}
	disable, err := cmd.Flags().GetStringSlice("disable-rule")
	if err != nil {
		return nil, err
	}

	if runOnly == "" && len(enable) == 0 && len(disable) == 0 {
		return nil, nil
	}

	axe := &model.AxeOptions{RunOnly: runOnly}
	if len(enable)+len(disable) > 0 {
		axe.Rules = make(map[string]model.RuleToggle, len(enable)+len(disable))
		for _, id := range enable {
			axe.Rules[id] = model.RuleToggle{Enabled: true}
		}
		for _, id := range disable {
			if _, ok := axe.Rules[id]; ok {
				return nil, fmt.Errorf("rule %q is both enabled and disabled", id)
			}
			axe.Rules[id] = model.RuleToggle{Enabled: false}
		}
	}
	return axe, nil
}

// runScan validates the request, runs it and prints the JSON result to out.
func runScan(ctx context.Context, out io.Writer, scanner tools.SingleScanner, batch tools.BatchScanner, req *scanRequest) error {
	var result any

	switch {
	case req.isHTML:
		cfg, err := model.NewHTMLScanConfig(req.html, req.options)
		if err != nil {
			return err
		}
		if result, err = scanner.Scan(ctx, cfg); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
	case len(req.urls) == 1:
		cfg, err := model.NewURLScanConfig(req.urls[0], req.options)
		if err != nil {
			return err
		}
		if result, err = scanner.Scan(ctx, cfg); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
	default:
		configs, err := model.NewBatchScanConfigs(req.urls, req.options)
		if err != nil {
			return err
		}
		if result, err = batch.Run(ctx, configs); err != nil {
			return fmt.Errorf("batch scan failed: %w", err)
		}
	}

	return writeJSON(out, result)
}

// writeJSON prints v as indented JSON followed by a newline.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}
