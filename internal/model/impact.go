package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Impact represents the ordinal severity of a violation or an affected node.
// Values order as minor < moderate < serious < critical and marshal to the
// axe-core names.
type Impact int

const (
	// ImpactUnknown is used when the rule engine did not report an impact.
	// It is never produced for a violation, only for nodes of some rules.
	ImpactUnknown Impact = iota

	// ImpactMinor indicates a nuisance that rarely blocks users.
	ImpactMinor

	// ImpactModerate indicates a barrier that makes content harder to use.
	ImpactModerate

	// ImpactSerious indicates a barrier that may prevent access for some users.
	ImpactSerious

	// ImpactCritical indicates a barrier that blocks access completely.
	ImpactCritical
)

// Impacts lists every known impact level from most to least severe.
var Impacts = []Impact{ImpactCritical, ImpactSerious, ImpactModerate, ImpactMinor}

// String returns the axe-core name of the impact level.
func (i Impact) String() string {
	switch i {
	case ImpactMinor:
		return "minor"
	case ImpactModerate:
		return "moderate"
	case ImpactSerious:
		return "serious"
	case ImpactCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseImpact converts an axe-core impact name to an Impact.
// Matching is case-insensitive. Unknown names return an error.
func ParseImpact(s string) (Impact, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minor":
		return ImpactMinor, nil
	case "moderate":
		return ImpactModerate, nil
	case "serious":
		return ImpactSerious, nil
	case "critical":
		return ImpactCritical, nil
	default:
		return ImpactUnknown, fmt.Errorf("unknown impact %q: must be one of minor, moderate, serious, critical", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
// This is also used when Impact is a map key (see ImpactTally).
func (i Impact) MarshalText() ([]byte, error) {
	if i == ImpactUnknown {
		return nil, fmt.Errorf("cannot marshal unknown impact")
	}
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Impact) UnmarshalText(text []byte) error {
	parsed, err := ParseImpact(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// MarshalJSON encodes the impact as its name, or null when unknown.
func (i Impact) MarshalJSON() ([]byte, error) {
	if i == ImpactUnknown {
		return []byte("null"), nil
	}
	return json.Marshal(i.String())
}

// UnmarshalJSON decodes an impact name. A JSON null leaves ImpactUnknown.
func (i *Impact) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = ImpactUnknown
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("impact must be a string: %w", err)
	}
	return i.UnmarshalText([]byte(s))
}

// ImpactTally maps impact levels to counts.
// Levels that are absent count as zero; JSON output only lists present levels.
type ImpactTally map[Impact]int

// Count returns the number recorded for the impact level, zero if absent.
func (t ImpactTally) Count(i Impact) int {
	return t[i]
}

// Total returns the sum of all counts.
func (t ImpactTally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Highest returns the most severe level with a non-zero count,
// or ImpactUnknown if the tally is empty.
func (t ImpactTally) Highest() Impact {
	for _, i := range Impacts {
		if t[i] > 0 {
			return i
		}
	}
	return ImpactUnknown
}
