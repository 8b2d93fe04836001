package model

import (
	"fmt"
	"time"
)

// Node is a DOM element affected by a violation.
type Node struct {
	// Impact is the severity for this particular node.
	Impact Impact `json:"impact"`

	// Target is the selector path that locates the node.
	Target []string `json:"target"`

	// FailureSummary explains how to fix the node.
	FailureSummary string `json:"failureSummary,omitempty"`

	// HTML is the outer HTML snippet of the node.
	// Returned only when the scan requested HTML snippets.
	HTML string `json:"html,omitempty"`
}

// Violation is a single accessibility rule failure.
type Violation struct {
	// ID is the rule identifier (for example "image-alt").
	ID string `json:"id"`

	// Impact is the overall severity of the rule failure.
	Impact Impact `json:"impact"`

	// Description explains what the rule checks.
	Description string `json:"description"`

	// HelpURL links to remediation guidance.
	HelpURL string `json:"helpUrl,omitempty"`

	// Nodes lists the affected elements.
	Nodes []Node `json:"nodes,omitempty"`
}

// ValidateViolations rejects caller-supplied violations that lack one of
// the four impact levels, naming the first offender's index.
func ValidateViolations(violations []Violation) error {
	for i, v := range violations {
		if v.Impact == ImpactUnknown {
			return newValidationError(fmt.Sprintf("violations[%d].impact", i),
				"is required and must be one of minor, moderate, serious, critical")
		}
	}
	return nil
}

// RawResults is the unfiltered output of one rule engine run.
// Violations keep their HTML snippets; pass and incomplete lists are only counted.
type RawResults struct {
	Violations      []Violation
	PassesCount     int
	IncompleteCount int
}

// ScanSummary holds totals for one engine run. Counts reflect the full run,
// not the truncated violation list.
type ScanSummary struct {
	Timestamp       time.Time `json:"timestamp"`
	ViolationsCount int       `json:"violationsCount"`
	PassesCount     int       `json:"passesCount"`
	IncompleteCount int       `json:"incompleteCount"`
}

// ScanResult is the response of a single URL or HTML scan.
type ScanResult struct {
	Summary    ScanSummary `json:"summary"`
	Violations []Violation `json:"violations"`
}

// BatchResult is the outcome for one target of a batch scan.
// Exactly one of (Summary and Violations) or Error is present.
type BatchResult struct {
	Target     string       `json:"target"`
	Success    bool         `json:"success"`
	Summary    *ScanSummary `json:"summary,omitempty"`
	Violations []Violation  `json:"violations,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// SucceededBatchResult builds a successful batch entry.
func SucceededBatchResult(target string, result *ScanResult) BatchResult {
	summary := result.Summary
	violations := result.Violations
	if violations == nil {
		violations = []Violation{}
	}
	return BatchResult{
		Target:     target,
		Success:    true,
		Summary:    &summary,
		Violations: violations,
	}
}

// FailedBatchResult builds a failed batch entry carrying the error message.
func FailedBatchResult(target string, err error) BatchResult {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return BatchResult{
		Target:  target,
		Success: false,
		Error:   msg,
	}
}

// CondensedViolation is the per-violation entry of a ViolationSummary.
type CondensedViolation struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	Impact        Impact `json:"impact"`
	HelpURL       string `json:"helpUrl,omitempty"`
	NodesAffected int    `json:"nodesAffected"`
}

// ViolationSummary aggregates a violation list by impact.
type ViolationSummary struct {
	TotalViolations int                  `json:"totalViolations"`
	ByImpact        ImpactTally          `json:"byImpact"`
	Violations      []CondensedViolation `json:"violations"`
}

// ExportRecord describes a report written to disk. Files are write-once.
type ExportRecord struct {
	// ID is the unique file identifier (the file name without extension).
	ID string `json:"id"`

	// Path is the absolute or output-relative location of the file.
	Path string `json:"path"`

	// Format is the name of the rendering written to the file.
	Format string `json:"format"`

	// TotalViolations is copied from the summary for history listings.
	TotalViolations int `json:"totalViolations"`

	// CreatedAt is when the file was written.
	CreatedAt time.Time `json:"createdAt"`
}
