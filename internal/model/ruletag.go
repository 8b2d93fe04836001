package model

import (
	"encoding/json"
	"fmt"
)

// RuleTag is a named accessibility standard or rule category understood by
// the rule engine (for example a WCAG conformance level).
type RuleTag string

// Supported rule tags. Only these values are accepted as a single standard.
const (
	RuleTagWCAG2A       RuleTag = "wcag2a"
	RuleTagWCAG2AA      RuleTag = "wcag2aa"
	RuleTagWCAG2AAA     RuleTag = "wcag2aaa"
	RuleTagWCAG21A      RuleTag = "wcag21a"
	RuleTagWCAG21AA     RuleTag = "wcag21aa"
	RuleTagWCAG22AA     RuleTag = "wcag22aa"
	RuleTagBestPractice RuleTag = "best-practice"
	RuleTagExperimental RuleTag = "experimental"
)

// KnownRuleTags lists every tag that may be selected as a single standard.
var KnownRuleTags = []RuleTag{
	RuleTagWCAG2A,
	RuleTagWCAG2AA,
	RuleTagWCAG2AAA,
	RuleTagWCAG21A,
	RuleTagWCAG21AA,
	RuleTagWCAG22AA,
	RuleTagBestPractice,
	RuleTagExperimental,
}

// DefaultRuleTags is the tag set used when no single standard is selected.
var DefaultRuleTags = []RuleTag{RuleTagWCAG2A, RuleTagWCAG2AA, RuleTagWCAG21AA}

// ParseRuleTag validates a tag name against KnownRuleTags.
func ParseRuleTag(s string) (RuleTag, error) {
	for _, tag := range KnownRuleTags {
		if string(tag) == s {
			return tag, nil
		}
	}
	return "", fmt.Errorf("unsupported rule tag %q", s)
}

// TagSelection chooses which rules the engine evaluates.
// The zero value selects DefaultRuleTags; SingleStandard selects exactly one tag.
// Combining a custom tag list with the default set is not supported.
type TagSelection struct {
	standard RuleTag
}

// SingleStandard returns a selection that activates only the given tag.
func SingleStandard(tag RuleTag) TagSelection {
	return TagSelection{standard: tag}
}

// IsDefault reports whether the default tag set is selected.
func (s TagSelection) IsDefault() bool {
	return s.standard == ""
}

// Standard returns the single selected tag, or "" for the default set.
func (s TagSelection) Standard() RuleTag {
	return s.standard
}

// Tags returns the active tags. The returned slice is a fresh copy.
func (s TagSelection) Tags() []RuleTag {
	if s.IsDefault() {
		tags := make([]RuleTag, len(DefaultRuleTags))
		copy(tags, DefaultRuleTags)
		return tags
	}
	return []RuleTag{s.standard}
}

// TagNames returns Tags as plain strings, the form the engine expects.
func (s TagSelection) TagNames() []string {
	tags := s.Tags()
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = string(tag)
	}
	return names
}

// MarshalJSON encodes the active tag list.
func (s TagSelection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.TagNames())
}
