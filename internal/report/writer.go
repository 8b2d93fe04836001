package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/a11yscan/internal/model"
)

// Report is the input of every Writer.
type Report struct {
	// Summary is the condensed view shared by all formats.
	Summary *model.ViolationSummary

	// Violations are the full violations the summary was built from.
	// Only the detailed format renders their nodes.
	Violations []model.Violation
}

// NewReport summarizes violations into a Report.
func NewReport(violations []model.Violation) *Report {
	if violations == nil {
		violations = []model.Violation{}
	}
	return &Report{
		Summary:    Summarize(violations),
		Violations: violations,
	}
}

// Writer defines the interface for report output.
// Implementations write a Report in one format.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *Report) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	title  cases.Caser
}

// newBaseWriter creates a baseWriter with the given output destination.
// Casers are stateful, so every writer gets its own.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{
		output: output,
		title:  cases.Title(language.English),
	}
}

// impactLabel returns the display name of an impact level.
func (b *baseWriter) impactLabel(i model.Impact) string {
	return b.title.String(i.String())
}

// violationsByImpact groups condensed violations by impact, keeping input order.
func violationsByImpact(summary *model.ViolationSummary) map[model.Impact][]model.CondensedViolation {
	grouped := make(map[model.Impact][]model.CondensedViolation)
	for _, v := range summary.Violations {
		grouped[v.Impact] = append(grouped[v.Impact], v)
	}
	return grouped
}

// displayImpacts lists the impact groups in rendering order, unknown last.
var displayImpacts = append(append([]model.Impact{}, model.Impacts...), model.ImpactUnknown)
