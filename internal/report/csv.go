package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/a11yscan/internal/model"
)

// csvHeader is the first row of the csv format.
var csvHeader = []string{"id", "impact", "description", "helpUrl", "nodesAffected"}

// CSVWriter outputs one row per violation.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as CSV.
func (w *CSVWriter) Write(report *Report) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	records := make([][]string, 0, len(report.Summary.Violations)+1)
	records = append(records, csvHeader)
	for _, v := range report.Summary.Violations {
		records = append(records, []string{
			v.ID,
			impactCell(v.Impact),
			v.Description,
			v.HelpURL,
			strconv.Itoa(v.NodesAffected),
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

func impactCell(i model.Impact) string {
	if i == model.ImpactUnknown {
		return ""
	}
	return i.String()
}
