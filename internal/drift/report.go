package drift

import (
	"time"

	"github.com/google/uuid"
)

// Report is the aggregate result of one run. Only its projections
// (markdown, JSON, SARIF) are ever written to disk.
type Report struct {
	RepoName        string
	RepoSHA         string
	RepoBranch      string
	Level           int
	GeneratedAt     time.Time
	RunID           string
	DetectorVersion string
	Findings        []Finding
	Inventories     map[string]any
}

// NewReport creates an empty report stamped with a fresh run id
func NewReport(repoName, sha, branch string, level int, generatedAt time.Time, detectorVersion string) *Report {
	return &Report{
		RepoName:        repoName,
		RepoSHA:         sha,
		RepoBranch:      branch,
		Level:           level,
		GeneratedAt:     generatedAt,
		RunID:           uuid.NewString(),
		DetectorVersion: detectorVersion,
		Findings:        []Finding{},
	}
}

// Summary provides aggregate statistics for a drift report
type Summary struct {
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Info     int `json:"info"`
	Total    int `json:"total"`
}

// CountsBySeverity returns the number of findings per severity. Every
// severity is present, possibly with a zero count.
func (r *Report) CountsBySeverity() map[Severity]int {
	counts := make(map[Severity]int, len(Severities))
	for _, s := range Severities {
		counts[s] = 0
	}
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// HasCritical reports whether any finding is CRITICAL
func (r *Report) HasCritical() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Summary returns the severity counts
func (r *Report) Summary() Summary {
	c := r.CountsBySeverity()
	return Summary{
		Critical: c[SeverityCritical],
		Major:    c[SeverityMajor],
		Minor:    c[SeverityMinor],
		Info:     c[SeverityInfo],
		Total:    len(r.Findings),
	}
}

// ByCategory returns the findings of one category in detection order
func (r *Report) ByCategory(cat Category) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Category == cat {
			out = append(out, f)
		}
	}
	return out
}

// BySeverity returns the findings of one severity in detection order
func (r *Report) BySeverity(sev Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// Metadata identifies the run in the JSON projection
type Metadata struct {
	Repo            string `json:"repo"`
	RepoSHA         string `json:"repo_sha"`
	RepoBranch      string `json:"repo_branch"`
	Level           int    `json:"level"`
	GeneratedAt     string `json:"generated_at"`
	DetectorVersion string `json:"detector_version"`
	RunID           string `json:"run_id"`
}

// Document is the JSON projection of a report
type Document struct {
	Metadata    Metadata       `json:"metadata"`
	Summary     Summary        `json:"summary"`
	Findings    []Finding      `json:"findings"`
	Inventories map[string]any `json:"inventories"`
}

// ToDocument converts the report to its JSON projection
func (r *Report) ToDocument() Document {
	findings := r.Findings
	if findings == nil {
		findings = []Finding{}
	}
	inventories := r.Inventories
	if inventories == nil {
		inventories = map[string]any{}
	}
	return Document{
		Metadata: Metadata{
			Repo:            r.RepoName,
			RepoSHA:         r.RepoSHA,
			RepoBranch:      r.RepoBranch,
			Level:           r.Level,
			GeneratedAt:     r.GeneratedAt.Format(time.RFC3339),
			DetectorVersion: r.DetectorVersion,
			RunID:           r.RunID,
		},
		Summary:     r.Summary(),
		Findings:    findings,
		Inventories: inventories,
	}
}
