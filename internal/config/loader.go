package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigFile is the configuration file looked up in the current directory.
const DefaultConfigFile = ".a11yscan.yaml"

// ErrConfigNotFound is returned when an explicitly named configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Configuration keys shared by the YAML file and the environment.
const (
	keyBrowser           = "browser"
	keyHeadless          = "headless"
	keyOutputDir         = "output_dir"
	keyChromePath        = "chrome_path"
	keyNavigationTimeout = "navigation_timeout"
	keyLogFile           = "log_file"
	keyHistory           = "history"
	keyHistoryDir        = "history_dir"
	keyAxeSource         = "axe_source"
)

// envBindings maps each key to the environment variables that override it.
// The first variable set wins.
var envBindings = map[string][]string{
	keyBrowser:           {"A11YSCAN_BROWSER"},
	keyHeadless:          {"A11YSCAN_HEADLESS", "HEADLESS"},
	keyOutputDir:         {"A11YSCAN_OUTPUT_DIR"},
	keyChromePath:        {"A11YSCAN_CHROME_PATH"},
	keyNavigationTimeout: {"A11YSCAN_NAVIGATION_TIMEOUT"},
	keyLogFile:           {"A11YSCAN_LOG_FILE"},
	keyHistory:           {"A11YSCAN_HISTORY"},
	keyHistoryDir:        {"A11YSCAN_HISTORY_DIR"},
	keyAxeSource:         {"A11YSCAN_AXE_SOURCE"},
}

// legacyBrowserEnv is honoured only when neither A11YSCAN_BROWSER nor the
// file picks an engine. Desktop sessions set it to arbitrary launchers, so
// unknown values fall back to chromium instead of failing validation.
const legacyBrowserEnv = "BROWSER"

// Load resolves the configuration from defaults, a YAML file and the environment.
//
// If path is empty, FindConfigFile decides which file to read, and a missing
// file is not an error. If path is set and does not exist, ErrConfigNotFound
// is returned. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	defaults := NewConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault(keyBrowser, defaults.BrowserType)
	v.SetDefault(keyHeadless, defaults.Headless)
	v.SetDefault(keyOutputDir, defaults.OutputDirectory)
	v.SetDefault(keyChromePath, "")
	v.SetDefault(keyNavigationTimeout, defaults.NavigationTimeout)
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyHistory, false)
	v.SetDefault(keyHistoryDir, defaults.HistoryDir)
	v.SetDefault(keyAxeSource, defaults.AxeSource)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%s: %w", path, ErrConfigNotFound)
			}
			return nil, err
		}
	}

	file := FindConfigFile(path)
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	browser := v.GetString(keyBrowser)
	if os.Getenv("A11YSCAN_BROWSER") == "" && !v.InConfig(keyBrowser) {
		if legacy := os.Getenv(legacyBrowserEnv); legacy != "" {
			browser = legacyBrowser(legacy)
		}
	}

	cfg := &Config{
		BrowserType:       strings.ToLower(strings.TrimSpace(browser)),
		Headless:          v.GetBool(keyHeadless),
		OutputDirectory:   v.GetString(keyOutputDir),
		ChromePath:        v.GetString(keyChromePath),
		NavigationTimeout: v.GetDuration(keyNavigationTimeout),
		LogFile:           v.GetString(keyLogFile),
		HistoryEnabled:    v.GetBool(keyHistory),
		HistoryDir:        v.GetString(keyHistoryDir),
		AxeSource:         v.GetString(keyAxeSource),
		ConfigFilePath:    file,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// legacyBrowser maps a BROWSER value to an engine. Anything that is not a
// Chromium name is logged and replaced by chromium.
func legacyBrowser(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case BrowserChromium, "chrome":
	default:
		slog.Warn("BROWSER does not name a supported engine, using chromium",
			"browser", value,
			"hint", "set A11YSCAN_BROWSER to choose the engine explicitly",
		)
	}
	return BrowserChromium
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .a11yscan.yaml in the current directory
// 3. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
