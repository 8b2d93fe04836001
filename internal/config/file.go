package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of the YAML configuration file.
// Keys match the ones Load reads; durations are Go duration strings.
type File struct {
	Browser           string `yaml:"browser"`
	Headless          bool   `yaml:"headless"`
	OutputDir         string `yaml:"output_dir"`
	ChromePath        string `yaml:"chrome_path"`
	NavigationTimeout string `yaml:"navigation_timeout"`
	LogFile           string `yaml:"log_file"`
	History           bool   `yaml:"history"`
	HistoryDir        string `yaml:"history_dir"`
	AxeSource         string `yaml:"axe_source"`
}

// NewFile returns a File populated from cfg.
func NewFile(cfg *Config) File {
	return File{
		Browser:           cfg.BrowserType,
		Headless:          cfg.Headless,
		OutputDir:         cfg.OutputDirectory,
		ChromePath:        cfg.ChromePath,
		NavigationTimeout: cfg.NavigationTimeout.String(),
		LogFile:           cfg.LogFile,
		History:           cfg.HistoryEnabled,
		HistoryDir:        cfg.HistoryDir,
		AxeSource:         cfg.AxeSource,
	}
}

const templateHeader = "a11yscan configuration\n" +
	"Environment variables take precedence over values in this file."

var fileComments = map[string]string{
	keyBrowser:           "Browser engine. Only chromium is supported. Env: A11YSCAN_BROWSER",
	keyHeadless:          "Run the browser without a window. Env: HEADLESS",
	keyOutputDir:         "Reports are written to <output_dir>/" + ResultsDirName + ". Env: A11YSCAN_OUTPUT_DIR",
	keyChromePath:        "Browser executable. Empty searches the usual install locations. Env: A11YSCAN_CHROME_PATH",
	keyNavigationTimeout: "Upper bound for loading a page or injecting HTML. Env: A11YSCAN_NAVIGATION_TIMEOUT",
	keyLogFile:           "Append log records to this file in addition to stderr. Env: A11YSCAN_LOG_FILE",
	keyHistory:           "Record scans and exports in a SQLite database. Env: A11YSCAN_HISTORY",
	keyHistoryDir:        "Directory holding " + HistoryDBName + ". Env: A11YSCAN_HISTORY_DIR",
	keyAxeSource:         "File path or http(s) URL of axe.min.js. Env: A11YSCAN_AXE_SOURCE",
}

// Template renders f as a commented YAML document.
func (f File) Template() ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(f); err != nil {
		return nil, fmt.Errorf("failed to encode config file: %w", err)
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if c, ok := fileComments[key.Value]; ok {
			key.HeadComment = c
		}
	}

	root := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: templateHeader,
		Content:     []*yaml.Node{&doc},
	}
	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("failed to render config file: %w", err)
	}
	return out, nil
}
