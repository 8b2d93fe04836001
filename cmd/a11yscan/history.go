package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
)

// defaultHistoryLimit is the number of records listed when --limit is not set.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "List recorded scans and exported reports",
		Long: `History lists scans recorded in the history database, newest first.
Recording is off by default; enable it with "history: true" in the
configuration file or A11YSCAN_HISTORY=true.

HTML targets are listed by their html:<digest> label.

Examples:
  # Last 20 scans of every target
  a11yscan history

  # Every scan of one page
  a11yscan history https://example.com --limit 0

  # Exported reports
  a11yscan history --exports`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of records (0 lists all)")
	cmd.Flags().BoolP("exports", "e", false, "List exported reports instead of scans")
	cmd.Flags().BoolP("json", "j", false, "Output records as JSON")

	return cmd
}

// historyOptions is the parsed form of the history command line.
type historyOptions struct {
	target  string
	limit   int
	exports bool
	json    bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var opts historyOptions
	var err error
	if len(args) == 1 {
		opts.target = args[0]
	}
	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	if opts.exports, err = cmd.Flags().GetBool("exports"); err != nil {
		return err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.exports && opts.target != "" {
		return errors.New("--exports does not take a target")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.HistoryDBPath(), database.Options{CreateIfNotExists: false})
	if errors.Is(err, database.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No history recorded yet (enable with A11YSCAN_HISTORY=true)")
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	return listHistory(cmd.Context(), cmd.OutOrStdout(), db, opts)
}

// listHistory prints scans or exports from db to out.
func listHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, opts historyOptions) error {
	if opts.exports {
		records, err := db.ListExports(ctx, opts.limit)
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(out, exportsOrEmpty(records))
		}
		printExports(out, records)
		return nil
	}

	records, err := db.ListScans(ctx, opts.target, opts.limit)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(out, scansOrEmpty(records))
	}
	printScans(out, opts.target, records)
	return nil
}

func printScans(out io.Writer, target string, records []database.ScanRecord) {
	if len(records) == 0 {
		if target != "" {
			fmt.Fprintf(out, "No scan history found for %s\n", target)
		} else {
			fmt.Fprintln(out, "No scan history found")
		}
		return
	}

	fmt.Fprintf(out, "Scan history (%d scans):\n\n", len(records))
	fmt.Fprintf(out, "  %-20s  %-6s  %-10s  %-40s  %s\n", "Date", "Status", "Violations", "Target", "Impact")
	for _, r := range records {
		status := "ok"
		detail := impactLine(r.ByImpact)
		if !r.Success {
			status = "failed"
			detail = r.Error
		}
		fmt.Fprintf(out, "  %-20s  %-6s  %-10d  %-40s  %s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			status,
			r.ViolationsCount,
			r.Target,
			detail,
		)
	}
}

func printExports(out io.Writer, records []model.ExportRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No exported reports found")
		return
	}

	fmt.Fprintf(out, "Exported reports (%d):\n\n", len(records))
	fmt.Fprintf(out, "  %-20s  %-9s  %-10s  %s\n", "Date", "Format", "Violations", "Path")
	for _, r := range records {
		fmt.Fprintf(out, "  %-20s  %-9s  %-10d  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Format,
			r.TotalViolations,
			r.Path,
		)
	}
}

// impactLine renders a tally as "critical=1 serious=2", most severe first.
func impactLine(tally model.ImpactTally) string {
	var parts []string
	for _, impact := range model.Impacts {
		if n := tally.Count(impact); n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", impact, n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func scansOrEmpty(records []database.ScanRecord) []database.ScanRecord {
	if records == nil {
		return []database.ScanRecord{}
	}
	return records
}

func exportsOrEmpty(records []model.ExportRecord) []model.ExportRecord {
	if records == nil {
		return []model.ExportRecord{}
	}
	return records
}
