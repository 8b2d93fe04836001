package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/a11yscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether impact levels with no violations are listed.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty impact sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb)
	w.writeSummary(&sb, report.Summary)
	w.writeViolations(&sb, report.Summary)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the report banner.
func (w *SimpleWriter) writeHeader(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    ACCESSIBILITY VIOLATIONS REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeSummary writes the impact summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, summary *model.ViolationSummary) {
	sb.WriteString("IMPACT SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, impact := range model.Impacts {
		fmt.Fprintf(sb, "  %-9s %d\n", w.impactLabel(impact)+":", summary.ByImpact.Count(impact))
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  %-9s %d violations\n\n", "Total:", summary.TotalViolations)
}

// writeViolations writes one line per violation, most severe first.
func (w *SimpleWriter) writeViolations(sb *strings.Builder, summary *model.ViolationSummary) {
	if summary.TotalViolations == 0 {
		sb.WriteString("No accessibility violations found.\n\n")
		return
	}

	sb.WriteString("VIOLATIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	grouped := violationsByImpact(summary)
	for _, impact := range displayImpacts {
		violations := grouped[impact]
		if len(violations) == 0 && (!w.showEmpty || impact == model.ImpactUnknown) {
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", w.indicator(impact), w.impactLabel(impact))
		if len(violations) == 0 {
			sb.WriteString("  No violations\n\n")
			continue
		}
		for _, v := range violations {
			fmt.Fprintf(sb, "  * %s: %s (%d %s)\n", v.ID, v.Description, v.NodesAffected, plural(v.NodesAffected, "node", "nodes"))
			if v.HelpURL != "" {
				fmt.Fprintf(sb, "    %s\n", v.HelpURL)
			}
		}
		sb.WriteString("\n")
	}
}

// indicator returns a visual marker for the impact level.
func (w *SimpleWriter) indicator(impact model.Impact) string {
	switch impact {
	case model.ImpactCritical:
		return "!!!"
	case model.ImpactSerious:
		return "!!"
	case model.ImpactModerate:
		return "!"
	case model.ImpactMinor:
		return "-"
	default:
		return "?"
	}
}

// writeFooter writes the closing rule.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
