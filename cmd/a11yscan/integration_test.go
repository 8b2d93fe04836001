package main

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"testing"
	"time"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/engine"
	applog "github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/model"
)

// skipIfShort skips the test if -short flag is set.
// Integration tests start a real browser and should be skipped in short mode.
func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode (requires Chromium)")
	}
}

// findChrome returns a Chromium executable or skips the test.
func findChrome(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("skipping integration test: Chromium binary not found")
	return ""
}

func TestIntegrationScanHTML(t *testing.T) {
	skipIfShort(t)
	chrome := findChrome(t)

	cfg := config.NewConfig()
	cfg.ChromePath = chrome
	cfg.OutputDirectory = t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	source := engine.NewScriptLoader(cfg.AxeSource, engine.WithCacheDir(config.XDGCacheDir()))
	if _, err := source.Script(ctx); err != nil {
		t.Skipf("skipping integration test: axe-core source unavailable: %v", err)
	}

	logger := &applog.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	a, err := newApp(cfg, logger)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	wait := 100
	scanCfg, err := model.NewHTMLScanConfig(
		`<!DOCTYPE html><html lang="en"><head><title>Gallery</title></head>`+
			`<body><main><h1>Gallery</h1><img src="photo.png"></main></body></html>`,
		model.ScanOptions{WaitForPageLoad: &wait},
	)
	if err != nil {
		t.Fatal(err)
	}

	result, err := a.scanner.Scan(ctx, scanCfg)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	var found bool
	for _, v := range result.Violations {
		if v.ID == "image-alt" {
			found = true
			if v.Impact != model.ImpactCritical {
				t.Errorf("image-alt impact = %s, want critical", v.Impact)
			}
			for _, n := range v.Nodes {
				if n.HTML != "" {
					t.Error("expected node HTML to be stripped by default")
				}
			}
		}
	}
	if !found {
		t.Errorf("expected an image-alt violation, got %+v", result.Violations)
	}
	if result.Summary.PassesCount == 0 {
		t.Error("expected some passing rules")
	}
}
