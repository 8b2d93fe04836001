package model

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every typed error below matches exactly one of these with
// errors.Is, so callers can branch on the kind without knowing the type.
var (
	// ErrValidation marks bad or missing caller parameters. A scan never starts.
	ErrValidation = errors.New("validation error")

	// ErrBrowser marks browser launch or execution context failures.
	ErrBrowser = errors.New("browser error")

	// ErrNavigationTimeout marks a navigation that exceeded its upper bound.
	ErrNavigationTimeout = errors.New("navigation timeout")

	// ErrEngine marks a rule engine invocation failure.
	ErrEngine = errors.New("rule engine error")

	// ErrExport marks a failure to persist an exported report.
	ErrExport = errors.New("export error")
)

// ValidationError names the offending parameter and why it was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// newValidationError is a shorthand used by the option validators.
func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// BrowserError reports a failed browser operation such as launch,
// opening an execution context, or loading content.
type BrowserError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *BrowserError) Error() string {
	return fmt.Sprintf("browser %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BrowserError) Unwrap() error { return e.Err }

// Is reports whether target is ErrBrowser.
func (e *BrowserError) Is(target error) bool {
	return target == ErrBrowser
}

// NavigationTimeoutError reports that loading a target did not reach
// network idle within the fixed upper bound.
type NavigationTimeoutError struct {
	Target  string
	Timeout time.Duration
}

// Error implements error.
func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s loading %s", e.Timeout, e.Target)
}

// Is reports whether target is ErrNavigationTimeout.
func (e *NavigationTimeoutError) Is(target error) bool {
	return target == ErrNavigationTimeout
}

// EngineError reports a failure while injecting or running the rule engine.
type EngineError struct {
	Err error
}

// Error implements error.
func (e *EngineError) Error() string {
	return fmt.Sprintf("accessibility engine failed: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *EngineError) Unwrap() error { return e.Err }

// Is reports whether target is ErrEngine.
func (e *EngineError) Is(target error) bool {
	return target == ErrEngine
}

// ExportError reports that a report could not be persisted.
// The in-memory summary is still valid when this error is returned.
type ExportError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to write report %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrExport.
func (e *ExportError) Is(target error) bool {
	return target == ErrExport
}
