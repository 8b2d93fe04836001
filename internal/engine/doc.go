// Package engine runs the axe-core accessibility rule engine against a
// loaded page.
//
// Analyzer is the contract the scan pipeline depends on. AxeAnalyzer
// implements it by injecting the axe-core script into the page, unless the
// page already defines window.axe, and evaluating axe.run with the selected
// rule tags and per-rule overrides. ScriptLoader provisions the script from a
// local file or an http(s) URL cached on disk.
package engine
