package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/a11yscan/internal/model"
)

// JSONWriter renders the json and detailed formats. HTML in node
// snippets is written as-is rather than \u003c-escaped.
type JSONWriter struct {
	baseWriter

	indent  string
	details bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent indents nested values by indent. An empty indent writes
// one compact line.
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = indent
	}
}

// WithPrettyPrint indents by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("  ")
}

// WithDetails includes every violation with its nodes after the summary.
func WithDetails() JSONWriterOption {
	return func(w *JSONWriter) {
		w.details = true
	}
}

// NewJSONWriter returns a compact JSONWriter on output unless an option
// says otherwise.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DetailedReport is the payload of the detailed format.
type DetailedReport struct {
	*model.ViolationSummary

	// Details are the full violations the summary was built from.
	Details []model.Violation `json:"details"`
}

// Write encodes the summary, or the summary with details, followed by a
// newline. It returns the number of bytes written.
func (w *JSONWriter) Write(report *Report) (int, error) {
	var v any = report.Summary
	if w.details {
		v = &DetailedReport{
			ViolationSummary: report.Summary,
			Details:          report.Violations,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", w.indent)
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
