// Package model defines the core data structures used throughout a11yscan.
//
// This package contains the following main types:
//   - ScanConfig: validated parameters for scanning one target
//   - Violation: a normalized accessibility rule failure
//   - ScanResult / BatchResult: per-target scan outcomes
//   - ViolationSummary: impact-bucketed aggregation of violations
//
// The browser, engine, pipeline, report and tools packages all exchange these
// types. Every type that appears in a tool response marshals to the JSON
// field names clients expect.
package model
