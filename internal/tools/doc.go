// Package tools exposes the scanner as MCP tools.
//
// Five tools are registered: scan-url, scan-html, scan-batch,
// summarize-violations and write-violations-report. Every handler returns a
// CallToolResult; failures are reported with IsError set and a readable
// message, never as a protocol error.
package tools
