package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default browser is chromium", func(t *testing.T) {
		t.Parallel()
		if cfg.BrowserType != "chromium" {
			t.Errorf("expected BrowserType to be 'chromium', got '%s'", cfg.BrowserType)
		}
	})

	t.Run("default is headless", func(t *testing.T) {
		t.Parallel()
		if !cfg.Headless {
			t.Error("expected Headless to be true")
		}
	})

	t.Run("default navigation timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.NavigationTimeout != 30*time.Second {
			t.Errorf("expected NavigationTimeout to be 30s, got %v", cfg.NavigationTimeout)
		}
	})

	t.Run("history is disabled", func(t *testing.T) {
		t.Parallel()
		if cfg.HistoryEnabled {
			t.Error("expected HistoryEnabled to be false")
		}
	})

	t.Run("output directory is under the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cfg.OutputDirectory, XDGDataDir()) {
			t.Errorf("expected output directory under %s, got %s", XDGDataDir(), cfg.OutputDirectory)
		}
	})

	t.Run("default axe source is pinned", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(cfg.AxeSource, "axe-core/4.10.2") {
			t.Errorf("unexpected AxeSource %s", cfg.AxeSource)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"chromium is case-insensitive", func(c *Config) { c.BrowserType = "Chromium" }, nil},
		{"firefox is unsupported", func(c *Config) { c.BrowserType = "firefox" }, ErrUnsupportedBrowser},
		{"webkit is unsupported", func(c *Config) { c.BrowserType = "webkit" }, ErrUnsupportedBrowser},
		{"empty output directory", func(c *Config) { c.OutputDirectory = " " }, ErrEmptyOutputDirectory},
		{"zero navigation timeout", func(c *Config) { c.NavigationTimeout = 0 }, ErrInvalidNavigationTimeout},
		{"history without directory", func(c *Config) {
			c.HistoryEnabled = true
			c.HistoryDir = ""
		}, ErrEmptyHistoryDir},
		{"history directory ignored when disabled", func(c *Config) { c.HistoryDir = "" }, nil},
		{"empty axe source", func(c *Config) { c.AxeSource = "" }, ErrEmptyAxeSource},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestConfigPaths(t *testing.T) {
	t.Parallel()

	cfg := &Config{OutputDirectory: "/srv/out", HistoryDir: "/var/lib/a11yscan"}
	if got := cfg.ResultsDir(); got != filepath.Join("/srv/out", "accessibility-test-results") {
		t.Errorf("unexpected results dir %s", got)
	}
	if got := cfg.HistoryDBPath(); got != filepath.Join("/var/lib/a11yscan", "a11yscan.db") {
		t.Errorf("unexpected history path %s", got)
	}
}

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, envs := range envBindings {
		for _, env := range envs {
			t.Setenv(env, "")
			_ = os.Unsetenv(env)
		}
	}
	t.Setenv(legacyBrowserEnv, "")
	_ = os.Unsetenv(legacyBrowserEnv)
}

// Tests below modify the process environment and must not run in parallel.

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "a11yscan.yaml")
	content := `browser: chromium
headless: false
output_dir: ` + filepath.Join(dir, "out") + `
navigation_timeout: 45s
history: true
history_dir: ` + filepath.Join(dir, "hist") + `
axe_source: /opt/axe/axe.min.js
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Headless {
		t.Error("expected headless false from file")
	}
	if cfg.OutputDirectory != filepath.Join(dir, "out") {
		t.Errorf("unexpected output dir %s", cfg.OutputDirectory)
	}
	if cfg.NavigationTimeout != 45*time.Second {
		t.Errorf("unexpected navigation timeout %v", cfg.NavigationTimeout)
	}
	if !cfg.HistoryEnabled || cfg.HistoryDir != filepath.Join(dir, "hist") {
		t.Errorf("unexpected history settings %v %s", cfg.HistoryEnabled, cfg.HistoryDir)
	}
	if cfg.AxeSource != "/opt/axe/axe.min.js" {
		t.Errorf("unexpected axe source %s", cfg.AxeSource)
	}
	if cfg.ConfigFilePath != path {
		t.Errorf("expected ConfigFilePath %s, got %s", path, cfg.ConfigFilePath)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "a11yscan.yaml")
	if err := os.WriteFile(path, []byte("headless: true\noutput_dir: /from/file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HEADLESS", "false")
	t.Setenv("A11YSCAN_OUTPUT_DIR", filepath.Join(dir, "env"))
	t.Setenv("A11YSCAN_NAVIGATION_TIMEOUT", "10s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Headless {
		t.Error("expected HEADLESS=false to win over the file")
	}
	if cfg.OutputDirectory != filepath.Join(dir, "env") {
		t.Errorf("unexpected output dir %s", cfg.OutputDirectory)
	}
	if cfg.NavigationTimeout != 10*time.Second {
		t.Errorf("unexpected navigation timeout %v", cfg.NavigationTimeout)
	}
}

func TestLoadRejectsUnsupportedBrowser(t *testing.T) {
	clearEnv(t)
	t.Setenv("A11YSCAN_BROWSER", "firefox")

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedBrowser) {
		t.Fatalf("expected ErrUnsupportedBrowser, got %v", err)
	}
}

func TestLoadLegacyBrowserFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, value := range []string{"/usr/bin/firefox", "xdg-open", "wslview", "firefox", "chrome", "Chromium"} {
		t.Run(value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("BROWSER", value)

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.BrowserType != BrowserChromium {
				t.Errorf("expected chromium, got %s", cfg.BrowserType)
			}
		})
	}
}

func TestLoadLegacyBrowserDoesNotOverrideFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BROWSER", "chromium")

	path := filepath.Join(t.TempDir(), "a11yscan.yaml")
	if err := os.WriteFile(path, []byte("browser: webkit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedBrowser) {
		t.Fatalf("expected the file's browser to be validated, got %v", err)
	}
}

func TestLoadPrefixedBrowserWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("BROWSER", "firefox")
	t.Setenv("A11YSCAN_BROWSER", "chromium")

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BrowserType != "chromium" {
		t.Errorf("expected chromium, got %s", cfg.BrowserType)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty path, got %s", got)
		}
	})
}

func TestFileTemplate(t *testing.T) {
	t.Parallel()

	out, err := NewFile(NewConfig()).Template()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := string(out)

	for _, want := range []string{"# a11yscan configuration", "browser: chromium", "navigation_timeout: 30s", "A11YSCAN_OUTPUT_DIR"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected template to contain %q:\n%s", want, text)
		}
	}

	var decoded File
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("template is not valid YAML: %v", err)
	}
	if decoded.Browser != "chromium" || !decoded.Headless {
		t.Errorf("unexpected decoded template %+v", decoded)
	}
}
