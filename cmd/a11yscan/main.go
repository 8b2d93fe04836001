// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan audits web pages for accessibility problems. It drives a headless
// Chromium, runs axe-core against the loaded page and reports WCAG
// violations. The serve command exposes the scanner as MCP tools over stdio.
//
// Usage:
//
//	a11yscan serve
//	a11yscan scan <url>...
//	a11yscan report <violations.json> --format markdown
//
// See --help for all available options.
package main

func main() {
	Execute()
}
