package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestScanTargetLabel(t *testing.T) {
	t.Parallel()

	t.Run("URL label is the URL", func(t *testing.T) {
		t.Parallel()

		target := URLTarget("https://example.com/")
		if target.Label() != "https://example.com/" {
			t.Errorf("unexpected label %q", target.Label())
		}
		if !target.IsURL() || target.Kind() != TargetURL {
			t.Error("expected URL kind")
		}
	})

	t.Run("HTML label never contains the content", func(t *testing.T) {
		t.Parallel()

		content := `<html><body><img src="secret-image.png"></body></html>`
		target := HTMLTarget(content)
		label := target.Label()

		if !strings.HasPrefix(label, "html:") {
			t.Errorf("expected html: prefix, got %q", label)
		}
		if len(label) != len("html:")+htmlLabelDigestLen {
			t.Errorf("unexpected label length %d", len(label))
		}
		if strings.Contains(label, "secret-image") {
			t.Error("label leaks HTML content")
		}
		if target.Value() != content {
			t.Error("expected Value to return the content")
		}
	})

	t.Run("HTML label is content-derived", func(t *testing.T) {
		t.Parallel()

		a := HTMLTarget("<p>a</p>").Label()
		b := HTMLTarget("<p>a</p>").Label()
		c := HTMLTarget("<p>b</p>").Label()
		if a != b {
			t.Error("expected identical content to produce identical labels")
		}
		if a == c {
			t.Error("expected different content to produce different labels")
		}
	})

	t.Run("JSON uses the label", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(HTMLTarget("<p>hello</p>"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(string(data), "hello") {
			t.Errorf("JSON leaks HTML content: %s", data)
		}
	})
}
