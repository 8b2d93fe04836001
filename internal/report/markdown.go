package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/a11yscan/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// impactMarkers decorate impact headings.
var impactMarkers = map[model.Impact]string{
	model.ImpactCritical: "🔴",
	model.ImpactSerious:  "🟠",
	model.ImpactModerate: "🟡",
	model.ImpactMinor:    "🔵",
	model.ImpactUnknown:  "⚪",
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Accessibility Violations Report")
	md.PlainText("")

	w.writeSummary(md, report.Summary)
	w.writeViolations(md, report.Summary)

	return len(md.String()), md.Build()
}

// writeSummary writes the impact table, chart and alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.ViolationSummary) {
	md.H2("Impact Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Impacts)+1)
	for _, impact := range model.Impacts {
		rows = append(rows, []string{
			impactMarkers[impact] + " " + w.impactLabel(impact),
			strconv.Itoa(summary.ByImpact.Count(impact)),
		})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(summary.TotalViolations) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Impact", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.ByImpact.Total() > 0 {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart for the impact distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.ViolationSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Violation Impact Distribution"),
		piechart.WithShowData(true),
	)

	for _, impact := range model.Impacts {
		if n := summary.ByImpact.Count(impact); n > 0 {
			chart.LabelAndIntValue(w.impactLabel(impact), uint64(n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert for the most severe impact present.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.ViolationSummary) {
	tally := summary.ByImpact
	switch tally.Highest() {
	case model.ImpactCritical:
		md.Cautionf(
			"%d critical violation(s) block access for some users and need immediate attention.",
			tally.Count(model.ImpactCritical),
		)
	case model.ImpactSerious:
		md.Warningf(
			"%d serious violation(s) may prevent some users from using the page.",
			tally.Count(model.ImpactSerious),
		)
	case model.ImpactModerate:
		md.Importantf(
			"%d moderate violation(s) make content harder to use.",
			tally.Count(model.ImpactModerate),
		)
	case model.ImpactMinor:
		md.Note("Only minor violations were found.")
	default:
		if summary.TotalViolations > 0 {
			md.Note("Violations were found but none reported an impact level.")
		} else {
			md.Tip("No accessibility violations found.")
		}
	}
	md.PlainText("")
}

// writeViolations writes one table per impact level.
func (w *MarkdownWriter) writeViolations(md *markdown.Markdown, summary *model.ViolationSummary) {
	md.H2("Violations")
	md.PlainText("")

	if summary.TotalViolations == 0 {
		md.PlainText("No accessibility violations found.")
		md.PlainText("")
		return
	}

	grouped := violationsByImpact(summary)
	for _, impact := range displayImpacts {
		violations := grouped[impact]
		if len(violations) == 0 {
			continue
		}

		md.PlainText("### " + impactMarkers[impact] + " " + w.impactLabel(impact))
		md.PlainText("")

		rows := make([][]string, len(violations))
		for i, v := range violations {
			help := "-"
			if v.HelpURL != "" {
				help = "[docs](" + v.HelpURL + ")"
			}
			rows[i] = []string{
				"`" + v.ID + "`",
				escapeCell(v.Description),
				strconv.Itoa(v.NodesAffected),
				help,
			}
		}

		md.Table(markdown.TableSet{
			Header: []string{"Rule", "Description", "Nodes", "Help"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// escapeCell keeps newlines from breaking a table row.
func escapeCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
