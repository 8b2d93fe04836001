package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/engine/enginetest"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
)

func TestParseViolations(t *testing.T) {
	t.Parallel()

	violations := enginetest.Violations(2, model.ImpactSerious)
	array, err := json.Marshal(violations)
	if err != nil {
		t.Fatal(err)
	}
	object, err := json.Marshal(model.ScanResult{Violations: violations})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{name: "violation array", input: string(array), want: 2},
		{name: "scan result object", input: "\n  " + string(object), want: 2},
		{name: "empty array", input: "[]", want: 0},
		{name: "empty input", input: "  ", wantErr: "empty"},
		{name: "object without violations", input: `{"summary":{}}`, wantErr: "no violations field"},
		{name: "malformed", input: `[{"id":`, wantErr: "failed to parse"},
		{name: "violation without impact", input: `[{"id":"region"}]`, wantErr: "violations[0].impact"},
		{name: "scan result without impact", input: `{"violations":[{"id":"region","impact":null}]}`, wantErr: "violations[0].impact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseViolations([]byte(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d violations, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReadViolationsFromStdin(t *testing.T) {
	t.Parallel()

	got, err := readViolations(strings.NewReader(`[{"id":"image-alt","impact":"critical","nodes":[]}]`), "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "image-alt" || got[0].Impact != model.ImpactCritical {
		t.Errorf("unexpected violations %+v", got)
	}
}

func TestReportCmdPrints(t *testing.T) {
	t.Parallel()

	input := filepath.Join(t.TempDir(), "violations.json")
	data, err := json.Marshal(enginetest.Violations(3, model.ImpactModerate))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(input, data, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		format string
		want   string
	}{
		{format: "default", want: `"totalViolations": 3`},
		{format: "simple", want: "ACCESSIBILITY VIOLATIONS REPORT"},
		{format: "csv", want: "id,impact,description,helpUrl,nodesAffected"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			cmd := NewReportCmd()
			cmd.SetOut(&out)
			cmd.SetArgs([]string{input, "--format", tt.format})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output does not contain %q:\n%s", tt.want, out.String())
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		cmd := NewReportCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{input, "--format", "pdf"})
		err := cmd.Execute()
		if !errors.Is(err, model.ErrValidation) {
			t.Errorf("error = %v, want validation error", err)
		}
	})
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	violations := enginetest.Violations(2, model.ImpactCritical)

	t.Run("writes the printed bytes and records the export", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(filepath.Join(t.TempDir(), "history.db"), database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = db.Close() })

		var out, status bytes.Buffer
		exporter := report.NewExporter(filepath.Join(t.TempDir(), "accessibility-test-results"))
		if err := writeReport(context.Background(), &out, &status, exporter, db, report.FormatMarkdown, violations); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		path := strings.TrimSpace(strings.TrimPrefix(status.String(), "Report written to "))
		if filepath.Ext(path) != ".md" {
			t.Errorf("path %q does not have the markdown extension", path)
		}
		written, err := os.ReadFile(path) //nolint:gosec // test output
		if err != nil {
			t.Fatalf("failed to read written report: %v", err)
		}
		if !bytes.Equal(written, out.Bytes()) {
			t.Error("written file differs from printed report")
		}

		exports, err := db.ListExports(context.Background(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(exports) != 1 || exports[0].Path != path || exports[0].TotalViolations != 2 {
			t.Errorf("unexpected export history %+v", exports)
		}
	})

	t.Run("prints the rendering when the write fails", func(t *testing.T) {
		t.Parallel()

		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}

		var out, status bytes.Buffer
		exporter := report.NewExporter(filepath.Join(blocker, "results"))
		err := writeReport(context.Background(), &out, &status, exporter, nil, report.FormatDefault, violations)
		if !errors.Is(err, model.ErrExport) {
			t.Fatalf("error = %v, want export error", err)
		}
		if !strings.Contains(out.String(), `"totalViolations": 2`) {
			t.Errorf("expected the rendering on stdout, got %q", out.String())
		}
		if status.Len() != 0 {
			t.Errorf("unexpected status output %q", status.String())
		}
	})
}
