package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/a11yscan/internal/model"
)

// Format selects how a summary is rendered.
type Format int

const (
	// FormatDefault renders the summary as indented JSON.
	FormatDefault Format = iota

	// FormatSimple renders a plain-text summary.
	FormatSimple

	// FormatDetailed renders the summary plus full violations as JSON.
	FormatDetailed

	// FormatMarkdown renders GitHub-flavored markdown.
	FormatMarkdown

	// FormatHTML renders a standalone HTML document.
	FormatHTML

	// FormatCSV renders one CSV row per violation.
	FormatCSV
)

// Formats lists every supported format in documentation order.
var Formats = []Format{
	FormatDefault,
	FormatSimple,
	FormatDetailed,
	FormatMarkdown,
	FormatHTML,
	FormatCSV,
}

// String returns the format name accepted by ParseFormat.
func (f Format) String() string {
	switch f {
	case FormatDefault:
		return "default"
	case FormatSimple:
		return "simple"
	case FormatDetailed:
		return "detailed"
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	case FormatCSV:
		return "csv"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the file extension used when the format is exported.
func (f Format) Extension() string {
	switch f {
	case FormatSimple:
		return ".txt"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	case FormatCSV:
		return ".csv"
	default:
		return ".json"
	}
}

// ContentType returns the MIME type of the rendered output.
func (f Format) ContentType() string {
	switch f {
	case FormatSimple:
		return "text/plain"
	case FormatMarkdown:
		return "text/markdown"
	case FormatHTML:
		return "text/html"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

// ParseFormat converts a format name to a Format.
// The empty string selects FormatDefault.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatDefault, nil
	}
	for _, f := range Formats {
		if f.String() == name {
			return f, nil
		}
	}
	return FormatDefault, &model.ValidationError{
		Field:  "format",
		Reason: fmt.Sprintf("unknown report format %q: must be one of %s", name, strings.Join(FormatNames(), ", ")),
	}
}

// FormatNames returns the names of all formats.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = f.String()
	}
	return names
}

// NewWriter returns the Writer that renders f to output.
func NewWriter(f Format, output io.Writer) Writer {
	switch f {
	case FormatSimple:
		return NewSimpleWriter(output)
	case FormatDetailed:
		return NewJSONWriter(output, WithPrettyPrint(), WithDetails())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	case FormatHTML:
		return NewHTMLWriter(output)
	case FormatCSV:
		return NewCSVWriter(output)
	default:
		return NewJSONWriter(output, WithPrettyPrint())
	}
}
