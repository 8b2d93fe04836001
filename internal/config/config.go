package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"

	// BrowserChromium is the only supported browser engine.
	BrowserChromium = "chromium"

	// DefaultBrowser is the browser engine used when none is configured.
	DefaultBrowser = BrowserChromium

	// DefaultHeadless runs the browser without a window.
	DefaultHeadless = true

	// DefaultNavigationTimeout bounds navigation and content injection.
	// Pages that never reach network idle fail after this long.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultAxeSource is the pinned axe-core build injected into pages.
	DefaultAxeSource = "https://cdnjs.cloudflare.com/ajax/libs/axe-core/4.10.2/axe.min.js"

	// ResultsDirName is the directory under the output root that holds exported reports.
	ResultsDirName = "accessibility-test-results"

	// HistoryDBName is the SQLite file name inside the history directory.
	HistoryDBName = "a11yscan.db"
)

// Config holds all configuration options for a11yscan.
// It is resolved once at startup and passed to components that need it.
type Config struct {
	// BrowserType is the browser engine. Only "chromium" is supported.
	BrowserType string

	// Headless runs the browser without a visible window.
	Headless bool

	// OutputDirectory is the root under which exported reports are written.
	OutputDirectory string

	// ChromePath overrides the browser executable. Empty lets chromedp find one.
	ChromePath string

	// NavigationTimeout is the upper bound for loading a URL or injecting HTML.
	NavigationTimeout time.Duration

	// LogFile, when set, receives a copy of every log record.
	LogFile string

	// Verbose enables debug logging.
	Verbose bool

	// HistoryEnabled records scans and exports in a SQLite database.
	HistoryEnabled bool

	// HistoryDir is the directory holding the history database.
	HistoryDir string

	// AxeSource is a file path or http(s) URL of the axe-core script.
	AxeSource string

	// ConfigFilePath is the YAML file the configuration was read from, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BrowserType:       DefaultBrowser,
		Headless:          DefaultHeadless,
		OutputDirectory:   DefaultOutputDir(),
		NavigationTimeout: DefaultNavigationTimeout,
		HistoryDir:        XDGDataDir(),
		AxeSource:         DefaultAxeSource,
	}
}

// XDGDataDir returns the XDG data directory for a11yscan.
// On Linux: ~/.local/share/a11yscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yscan.
// On Linux: ~/.config/a11yscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for a11yscan.
// On Linux: ~/.cache/a11yscan
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DefaultOutputDir returns the default export root.
func DefaultOutputDir() string {
	return filepath.Join(XDGDataDir(), "output")
}

// ResultsDir returns the directory exported reports are written to.
func (c *Config) ResultsDir() string {
	return filepath.Join(c.OutputDirectory, ResultsDirName)
}

// HistoryDBPath returns the path of the history database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.HistoryDir, HistoryDBName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package's sentinel errors.
func (c *Config) Validate() error {
	if !strings.EqualFold(c.BrowserType, BrowserChromium) {
		return ErrUnsupportedBrowser
	}

	if strings.TrimSpace(c.OutputDirectory) == "" {
		return ErrEmptyOutputDirectory
	}

	if c.NavigationTimeout <= 0 {
		return ErrInvalidNavigationTimeout
	}

	if c.HistoryEnabled && strings.TrimSpace(c.HistoryDir) == "" {
		return ErrEmptyHistoryDir
	}

	if strings.TrimSpace(c.AxeSource) == "" {
		return ErrEmptyAxeSource
	}

	return nil
}
