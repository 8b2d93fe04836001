package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrUnsupportedBrowser is returned when the browser engine is not chromium.
	// firefox and webkit are accepted names elsewhere but no driver exists for them.
	ErrUnsupportedBrowser = errors.New("unsupported browser: only chromium is supported")

	// ErrEmptyOutputDirectory is returned when no export root is configured.
	ErrEmptyOutputDirectory = errors.New("invalid output directory: must not be empty")

	// ErrInvalidNavigationTimeout is returned when the navigation timeout is not positive.
	ErrInvalidNavigationTimeout = errors.New("invalid navigation timeout: must be positive")

	// ErrEmptyHistoryDir is returned when history is enabled without a directory.
	ErrEmptyHistoryDir = errors.New("invalid history directory: must not be empty when history is enabled")

	// ErrEmptyAxeSource is returned when no axe-core source is configured.
	ErrEmptyAxeSource = errors.New("invalid axe source: must not be empty")
)
