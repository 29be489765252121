package drift

import (
	"fmt"
	"strings"
)

// Severity is the impact of a finding. The zero value is invalid.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityMinor    Severity = "MINOR"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityMinor:    1,
	SeverityMajor:    2,
	SeverityCritical: 3,
}

// Severities lists every severity from least to most severe
var Severities = []Severity{SeverityInfo, SeverityMinor, SeverityMajor, SeverityCritical}

// Rank returns the position of s in the total order, or -1 for an unknown value
func (s Severity) Rank() int {
	r, ok := severityRank[s]
	if !ok {
		return -1
	}
	return r
}

// Less reports whether s orders before other
func (s Severity) Less(other Severity) bool {
	return s.Rank() < other.Rank()
}

// Valid reports whether s is one of the four defined severities
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// ParseSeverity parses a severity name, case-insensitively
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if !sev.Valid() {
		return "", fmt.Errorf("invalid severity %q (want INFO, MINOR, MAJOR or CRITICAL)", s)
	}
	return sev, nil
}

// Category groups findings by the kind of drift they describe
type Category string

const (
	CategoryInventoryMismatch Category = "inventory_mismatch"
	CategoryBrokenLink        Category = "broken_link"
	CategoryStalePath         Category = "stale_path"
	CategoryOrphanCandidate   Category = "orphan_candidate"
	CategoryMisplaced         Category = "misplaced_artifact"
	CategoryMetaMismatch      Category = "meta_mismatch"
	CategoryGeneratorDrift    Category = "generator_drift"
	CategoryDocContradiction  Category = "doc_contradiction"
	CategoryConfigWarning     Category = "config_warning"
)

var defaultSeverity = map[Category]Severity{
	CategoryInventoryMismatch: SeverityCritical,
	CategoryBrokenLink:        SeverityCritical,
	CategoryDocContradiction:  SeverityMajor,
	CategoryGeneratorDrift:    SeverityMajor,
	CategoryStalePath:         SeverityMinor,
	CategoryMetaMismatch:      SeverityMinor,
	CategoryMisplaced:         SeverityMinor,
	CategoryOrphanCandidate:   SeverityInfo,
	CategoryConfigWarning:     SeverityInfo,
}

// DefaultSeverity returns the severity a category carries unless a check
// decides otherwise.
func (c Category) DefaultSeverity() Severity {
	if s, ok := defaultSeverity[c]; ok {
		return s
	}
	return SeverityInfo
}

// Confidence expresses how sure a check is about a finding
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Finding is a single detected drift
type Finding struct {
	ID             string         `json:"id"`
	Level          int            `json:"level"`
	Severity       Severity       `json:"severity"`
	Category       Category       `json:"category"`
	Message        string         `json:"message"`
	File           string         `json:"file,omitempty"`
	Line           int            `json:"line,omitempty"`
	Column         *int           `json:"column,omitempty"`
	SuggestedFix   []string       `json:"suggested_fix"`
	Confidence     Confidence     `json:"confidence"`
	RequiresReview bool           `json:"requires_review"`
	Context        map[string]any `json:"context,omitempty"`
	Fingerprint    string         `json:"fingerprint"`
}

// Counter hands out per-level sequential finding ids. It is owned by a
// single scan and never reset mid-run.
type Counter struct {
	next [4]int
}

// Next returns the next id for level, e.g. DRIFT-L2-007
func (c *Counter) Next(level int) string {
	if level < 1 || level > 3 {
		level = 1
	}
	c.next[level]++
	return fmt.Sprintf("DRIFT-L%d-%03d", level, c.next[level])
}
