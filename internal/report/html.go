package report

import (
	"bytes"
	"io"
	"net/url"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/a11yscan/internal/model"
)

// HTMLWriter outputs reports as a standalone HTML document.
// The document is built as a node tree so every text value is escaped.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

const htmlStyle = `body{font-family:system-ui,sans-serif;margin:2rem;line-height:1.5}
table{border-collapse:collapse;margin-bottom:1.5rem}
th,td{border:1px solid #ccc;padding:.25rem .5rem;text-align:left}
.critical{color:#b00020}.serious{color:#c75000}.moderate{color:#8a6d00}.minor{color:#0b5cad}`

// Write outputs the report as HTML.
func (w *HTMLWriter) Write(report *Report) (int, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "en"))
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(withText(element(atom.Title), "Accessibility Violations Report"))
	head.AppendChild(withText(element(atom.Style), htmlStyle))
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)

	content := element(atom.Main)
	body.AppendChild(content)
	content.AppendChild(withText(element(atom.H1), "Accessibility Violations Report"))
	content.AppendChild(w.summaryTable(report.Summary))
	w.appendViolations(content, report.Summary)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return 0, err
	}
	buf.WriteByte('\n')
	return w.output.Write(buf.Bytes())
}

// summaryTable builds the impact count table.
func (w *HTMLWriter) summaryTable(summary *model.ViolationSummary) *html.Node {
	table := element(atom.Table)
	table.AppendChild(withText(element(atom.Caption), "Impact summary"))
	table.AppendChild(row(atom.Th, "Impact", "Count"))
	for _, impact := range model.Impacts {
		tr := row(atom.Td, w.impactLabel(impact), strconv.Itoa(summary.ByImpact.Count(impact)))
		tr.FirstChild.Attr = append(tr.FirstChild.Attr, attr("class", impact.String()))
		table.AppendChild(tr)
	}
	table.AppendChild(row(atom.Td, "Total", strconv.Itoa(summary.TotalViolations)))
	return table
}

// appendViolations adds one section per impact level to parent.
func (w *HTMLWriter) appendViolations(parent *html.Node, summary *model.ViolationSummary) {
	if summary.TotalViolations == 0 {
		parent.AppendChild(withText(element(atom.P), "No accessibility violations found."))
		return
	}

	grouped := violationsByImpact(summary)
	for _, impact := range displayImpacts {
		violations := grouped[impact]
		if len(violations) == 0 {
			continue
		}

		section := element(atom.Section)
		section.AppendChild(withText(element(atom.H2, attr("class", impact.String())), w.impactLabel(impact)))

		table := element(atom.Table)
		table.AppendChild(row(atom.Th, "Rule", "Description", "Nodes", "Help"))
		for _, v := range violations {
			tr := row(atom.Td, v.ID, v.Description, strconv.Itoa(v.NodesAffected))
			help := element(atom.Td)
			if isWebURL(v.HelpURL) {
				help.AppendChild(withText(element(atom.A, attr("href", v.HelpURL)), "docs"))
			} else {
				help.AppendChild(text("-"))
			}
			tr.AppendChild(help)
			table.AppendChild(tr)
		}
		section.AppendChild(table)
		parent.AppendChild(section)
	}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}

// row builds a table row whose cells use the given cell element.
func row(cell atom.Atom, values ...string) *html.Node {
	tr := element(atom.Tr)
	for _, v := range values {
		tr.AppendChild(withText(element(cell), v))
	}
	return tr
}

// isWebURL reports whether s is an absolute http or https URL.
func isWebURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
