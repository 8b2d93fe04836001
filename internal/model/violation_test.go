package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestBatchResult(t *testing.T) {
	t.Parallel()

	t.Run("succeeded result has summary and violations", func(t *testing.T) {
		t.Parallel()

		r := SucceededBatchResult("https://example.com", &ScanResult{Summary: ScanSummary{PassesCount: 3}})
		if !r.Success || r.Summary == nil || r.Error != "" {
			t.Fatalf("unexpected result %+v", r)
		}
		if r.Violations == nil {
			t.Error("expected empty, non-nil violations")
		}
	})

	t.Run("failed result carries only the error", func(t *testing.T) {
		t.Parallel()

		r := FailedBatchResult("https://example.com", errors.New("connection refused"))
		if r.Success || r.Summary != nil || r.Violations != nil {
			t.Fatalf("unexpected result %+v", r)
		}
		if r.Error != "connection refused" {
			t.Errorf("unexpected error %q", r.Error)
		}

		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(string(data), "summary") || strings.Contains(string(data), "violations") {
			t.Errorf("failed result should omit summary and violations: %s", data)
		}
	})

	t.Run("nil error gets a placeholder message", func(t *testing.T) {
		t.Parallel()

		if r := FailedBatchResult("x", nil); r.Error == "" {
			t.Error("expected non-empty error message")
		}
	})
}

func TestViolationJSON(t *testing.T) {
	t.Parallel()

	v := Violation{
		ID:          "image-alt",
		Impact:      ImpactCritical,
		Description: "Images must have alternate text",
		Nodes:       []Node{{Impact: ImpactCritical, Target: []string{"img"}}},
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"id":"image-alt"`, `"impact":"critical"`, `"target":["img"]`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, `"html"`) {
		t.Errorf("expected empty html to be omitted: %s", s)
	}
}

func TestValidateViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantField string
	}{
		{name: "all impacts set", input: `[{"id":"a","impact":"minor"},{"id":"b","impact":"critical"}]`},
		{name: "empty list", input: `[]`},
		{name: "missing impact", input: `[{"id":"a","impact":"serious"},{"id":"b"}]`, wantField: "violations[1].impact"},
		{name: "null impact", input: `[{"id":"a","impact":null}]`, wantField: "violations[0].impact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var violations []Violation
			if err := json.Unmarshal([]byte(tt.input), &violations); err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}

			err := ValidateViolations(violations)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected a ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tt.wantField)
			}
			if !errors.Is(err, ErrValidation) {
				t.Error("expected errors.Is(err, ErrValidation)")
			}
		})
	}
}
