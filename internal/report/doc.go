// Package report summarizes violation lists and renders them.
//
// Summarize condenses violations into per-impact counts. Render turns the
// summary into one of a closed set of formats, each produced by its own
// Writer:
//   - default: indented JSON of the summary
//   - simple: plain text for terminals
//   - detailed: indented JSON of the summary and every violation with nodes
//   - markdown: GitHub-flavored markdown with a mermaid pie chart
//   - html: a standalone HTML document
//   - csv: one row per violation
//
// Exporter persists a rendering under a fresh file name. Files are created
// once and never rewritten.
package report
