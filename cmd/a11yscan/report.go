package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/nao1215/a11yscan/internal/tools"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <violations.json>",
		Short: "Summarize saved violations in one of the report formats",
		Long: `Report reads violations saved from a scan and prints a summary grouped by
impact. The input is either a JSON array of violations or a scan result
object as printed by "a11yscan scan". Use "-" to read from stdin.

With --write the rendering is also written to a new file under
<output_dir>/accessibility-test-results/. Existing files are never replaced.

Formats: ` + strings.Join(report.FormatNames(), ", ") + `

Examples:
  # Markdown summary of a saved scan
  a11yscan scan https://example.com > result.json
  a11yscan report result.json --format markdown

  # Write an HTML report
  a11yscan report result.json --format html --write`,
		Args: cobra.ExactArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("format", "F", report.FormatDefault.String(), "Report format")
	cmd.Flags().BoolP("write", "w", false, "Write the report to the results directory")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	name, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		return err
	}

	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}

	violations, err := readViolations(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	if !write {
		return printReport(cmd.OutOrStdout(), format, violations)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer logger.Close() //nolint:errcheck // best effort on exit

	var recorder tools.ExportRecorder
	if cfg.HistoryEnabled {
		db, err := database.Open(cfg.HistoryDBPath(), database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		recorder = db
	}

	exporter := report.NewExporter(cfg.ResultsDir(), report.WithExportLogger(logger.Logger))
	return writeReport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), exporter, recorder, format, violations)
}

// printReport renders violations in format f to out.
func printReport(out io.Writer, f report.Format, violations []model.Violation) error {
	rendered, err := report.Render(f, violations)
	if err != nil {
		return err
	}
	_, err = out.Write(rendered.Data)
	return err
}

// writeReport exports violations, prints the rendering to out and the
// written path to status. The rendering is printed even when the file
// could not be written.
func writeReport(ctx context.Context, out, status io.Writer, exporter tools.ReportExporter, recorder tools.ExportRecorder, f report.Format, violations []model.Violation) error {
	rendered, record, err := exporter.Export(f, violations)
	if rendered != nil {
		if _, werr := out.Write(rendered.Data); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}

	if recorder != nil {
		if err := recorder.RecordExport(ctx, record); err != nil {
			slog.Warn("failed to record export history", "path", record.Path, "error", err)
		}
	}

	fmt.Fprintf(status, "Report written to %s\n", record.Path)
	return nil
}

// readViolations loads violations from path, or stdin when path is "-".
func readViolations(stdin io.Reader, path string) ([]model.Violation, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // user-specified input file
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read violations: %w", err)
	}
	return parseViolations(data)
}

// parseViolations accepts a violation array or a scan result object.
func parseViolations(data []byte) ([]model.Violation, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("violations input is empty")
	}

	if data[0] == '[' {
		var violations []model.Violation
		if err := json.Unmarshal(data, &violations); err != nil {
			return nil, fmt.Errorf("failed to parse violations: %w", err)
		}
		if err := model.ValidateViolations(violations); err != nil {
			return nil, err
		}
		return violations, nil
	}

	var result model.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse scan result: %w", err)
	}
	if result.Violations == nil {
		return nil, errors.New("input has no violations field")
	}
	if err := model.ValidateViolations(result.Violations); err != nil {
		return nil, err
	}
	return result.Violations, nil
}
