package report

import (
	"bytes"
	"fmt"

	"github.com/nao1215/a11yscan/internal/model"
)

// Summarize condenses violations into a per-impact tally and one entry per
// violation. It performs no I/O and returns the same result for the same input.
// Violations without an impact are counted in the total only.
func Summarize(violations []model.Violation) *model.ViolationSummary {
	summary := &model.ViolationSummary{
		TotalViolations: len(violations),
		ByImpact:        model.ImpactTally{},
		Violations:      make([]model.CondensedViolation, 0, len(violations)),
	}

	for _, v := range violations {
		if v.Impact != model.ImpactUnknown {
			summary.ByImpact[v.Impact]++
		}
		summary.Violations = append(summary.Violations, model.CondensedViolation{
			ID:            v.ID,
			Description:   v.Description,
			Impact:        v.Impact,
			HelpURL:       v.HelpURL,
			NodesAffected: len(v.Nodes),
		})
	}

	return summary
}

// Rendered is a summary together with its rendering in one format.
type Rendered struct {
	Format  Format
	Summary *model.ViolationSummary
	Data    []byte
}

// Render summarizes violations and renders the summary in format f.
func Render(f Format, violations []model.Violation) (*Rendered, error) {
	r := NewReport(violations)

	var buf bytes.Buffer
	if _, err := NewWriter(f, &buf).Write(r); err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", f, err)
	}

	return &Rendered{
		Format:  f,
		Summary: r.Summary,
		Data:    buf.Bytes(),
	}, nil
}
