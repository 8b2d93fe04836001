package model

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/sha3"
)

// TargetKind tells whether a ScanTarget is a URL or raw HTML content.
type TargetKind int

const (
	// TargetURL is a page loaded by navigating to an absolute http(s) URL.
	TargetURL TargetKind = iota

	// TargetHTML is raw HTML content injected into a blank page.
	TargetHTML
)

// String returns a short name for the kind.
func (k TargetKind) String() string {
	switch k {
	case TargetURL:
		return "url"
	case TargetHTML:
		return "html"
	default:
		return "unknown"
	}
}

// htmlLabelDigestLen is the number of hex digits kept in an HTML target label.
const htmlLabelDigestLen = 16

// ScanTarget is either a URL or raw HTML content. Exactly one form is active.
type ScanTarget struct {
	kind  TargetKind
	value string
}

// URLTarget returns a target that navigates to rawURL.
func URLTarget(rawURL string) ScanTarget {
	return ScanTarget{kind: TargetURL, value: rawURL}
}

// HTMLTarget returns a target that injects the given HTML content.
func HTMLTarget(content string) ScanTarget {
	return ScanTarget{kind: TargetHTML, value: content}
}

// Kind returns the active form.
func (t ScanTarget) Kind() TargetKind { return t.kind }

// Value returns the URL or the HTML content.
func (t ScanTarget) Value() string { return t.value }

// IsURL reports whether the target is a URL.
func (t ScanTarget) IsURL() bool { return t.kind == TargetURL }

// Label identifies the target in logs, results and history without echoing
// page content. URLs are returned as-is; HTML content is replaced by a
// content-derived digest of the form "html:<hex>".
func (t ScanTarget) Label() string {
	if t.kind == TargetURL {
		return t.value
	}
	sum := sha3.Sum256([]byte(t.value))
	return "html:" + hex.EncodeToString(sum[:])[:htmlLabelDigestLen]
}

// String implements fmt.Stringer using Label.
func (t ScanTarget) String() string { return t.Label() }

// MarshalJSON encodes the label, never the raw HTML.
func (t ScanTarget) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Label())
}
