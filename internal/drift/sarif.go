package drift

import (
	"encoding/json"
	"fmt"
	"os"
)

// SARIF represents a SARIF 2.1.0 report structure
type SARIF struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single run in a SARIF report
type SARIFRun struct {
	Tool              SARIFTool         `json:"tool"`
	AutomationDetails *SARIFAutomation  `json:"automationDetails,omitempty"`
	Results           []SARIFResult     `json:"results"`
	Properties        map[string]string `json:"properties,omitempty"`
}

// SARIFAutomation identifies the run
type SARIFAutomation struct {
	GUID string `json:"guid"`
}

// SARIFTool describes the tool that generated the report
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata
type SARIFDriver struct {
	Name            string      `json:"name"`
	InformationURI  string      `json:"informationUri,omitempty"`
	SemanticVersion string      `json:"semanticVersion,omitempty"`
	Rules           []SARIFRule `json:"rules,omitempty"`
}

// SARIFRule describes one finding category
type SARIFRule struct {
	ID               string       `json:"id"`
	ShortDescription SARIFMessage `json:"shortDescription"`
}

// SARIFResult represents a single finding
type SARIFResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"` // "error", "warning", "note"
	Message             SARIFMessage      `json:"message"`
	Locations           []SARIFLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          map[string]any    `json:"properties,omitempty"`
}

// SARIFMessage contains the finding message
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes where the finding occurred
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation provides file-level location
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           *SARIFRegion          `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies the artifact
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion is a 1-based line/column position
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

var categoryDescriptions = map[Category]string{
	CategoryInventoryMismatch: "Filesystem inventory disagrees with the registry or the Betty layout",
	CategoryBrokenLink:        "Internal markdown link points at a missing file",
	CategoryStalePath:         "Document references a path that has moved",
	CategoryOrphanCandidate:   "Unreferenced document that may be archived",
	CategoryMisplaced:         "File lives outside its expected location",
	CategoryMetaMismatch:      "META.yaml disagrees with the repository",
	CategoryGeneratorDrift:    "Generated document is stale or incomplete",
	CategoryDocContradiction:  "Canonical documents disagree with ground truth",
	CategoryConfigWarning:     "Drift rules reference something that does not exist",
}

// SARIFLevel maps a severity to a SARIF result level
func SARIFLevel(s Severity) string {
	switch s {
	case SeverityCritical, SeverityMajor:
		return "error"
	case SeverityMinor:
		return "warning"
	default:
		return "note"
	}
}

// ToSARIF converts a drift report to SARIF format
func (r *Report) ToSARIF() *SARIF {
	run := SARIFRun{
		Tool: SARIFTool{
			Driver: SARIFDriver{
				Name:            "betty-drift",
				InformationURI:  "https://github.com/bettyprotocol/betty-drift",
				SemanticVersion: r.DetectorVersion,
				Rules:           sarifRules(r),
			},
		},
		Results: convertFindingsToSARIF(r),
		Properties: map[string]string{
			"repo":        r.RepoName,
			"repo_sha":    r.RepoSHA,
			"repo_branch": r.RepoBranch,
		},
	}
	if r.RunID != "" {
		run.AutomationDetails = &SARIFAutomation{GUID: r.RunID}
	}

	return &SARIF{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Runs:    []SARIFRun{run},
	}
}

// sarifRules lists the categories present in the report, in first-seen order
func sarifRules(r *Report) []SARIFRule {
	seen := map[Category]bool{}
	var rules []SARIFRule
	for _, f := range r.Findings {
		if seen[f.Category] {
			continue
		}
		seen[f.Category] = true
		rules = append(rules, SARIFRule{
			ID:               string(f.Category),
			ShortDescription: SARIFMessage{Text: categoryDescriptions[f.Category]},
		})
	}
	return rules
}

// convertFindingsToSARIF converts drift findings to SARIF results
func convertFindingsToSARIF(r *Report) []SARIFResult {
	results := make([]SARIFResult, 0, len(r.Findings))

	for _, finding := range r.Findings {
		result := SARIFResult{
			RuleID:  string(finding.Category),
			Level:   SARIFLevel(finding.Severity),
			Message: SARIFMessage{Text: finding.Message},
			Properties: map[string]any{
				"id":              finding.ID,
				"severity":        string(finding.Severity),
				"requires_review": finding.RequiresReview,
			},
		}
		if finding.Fingerprint != "" {
			result.PartialFingerprints = map[string]string{"bettyDrift/v1": finding.Fingerprint}
		}

		// Add location if available
		if finding.File != "" {
			loc := SARIFPhysicalLocation{
				ArtifactLocation: SARIFArtifactLocation{URI: finding.File},
			}
			if finding.Line > 0 {
				loc.Region = &SARIFRegion{StartLine: finding.Line}
				if finding.Column != nil {
					loc.Region.StartColumn = *finding.Column + 1
				}
			}
			result.Locations = []SARIFLocation{{PhysicalLocation: loc}}
		}

		results = append(results, result)
	}

	return results
}

// SaveSARIF writes a SARIF report to disk
func SaveSARIF(sarif *SARIF, path string) error {
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal SARIF: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write SARIF file: %w", err)
	}

	return nil
}
