// Package pipeline drives scan targets through the browser and the rule engine.
//
// A single target runs through a Pipeline of steps: load the target into its
// execution context, wait a fixed settle delay, analyze the page and
// normalize the findings. Executor builds and runs that pipeline against an
// already opened page.
//
// Scanner owns the browser for a single URL or HTML scan. BatchCoordinator
// shares one browser across a batch, opens a fresh execution context per
// target and scans targets strictly one at a time. A failing target is
// recorded in its BatchResult and never aborts the rest of the batch.
package pipeline
