// Package rules resolves drift-checking configuration.
//
// Resolution is best-effort: an explicit rules file wins, then the
// repository's 30_config/drift_rules.yaml, then universal defaults that
// only assume the standard canonical filenames.
package rules

import (
	"github.com/bmatcuk/doublestar/v4"
)

// RepoRulesPath is the repository-local override location, relative to the root
const RepoRulesPath = "30_config/drift_rules.yaml"

// PrimerDoc is the generated primer document name
const PrimerDoc = "PROJECT_PRIMER.md"

// KnownKeys are the recognised top-level keys of a rules file
var KnownKeys = []string{
	"canonical_scope",
	"excludes",
	"protected_from_archive",
	"stale_path_patterns",
	"validator_inventory",
	"link_validation",
	"archive_candidates",
	"generator_drift",
}

// Rules is the resolved drift configuration
type Rules struct {
	CanonicalScope       []string                 `yaml:"canonical_scope"`
	Excludes             []string                 `yaml:"excludes"`
	ProtectedFromArchive []string                 `yaml:"protected_from_archive"`
	StalePathPatterns    []StalePathRule          `yaml:"stale_path_patterns"`
	ValidatorInventory   ValidatorInventory       `yaml:"validator_inventory"`
	LinkValidation       LinkValidation           `yaml:"link_validation"`
	ArchiveCandidates    ArchiveCandidates        `yaml:"archive_candidates"`
	GeneratorDrift       map[string]GeneratorRule `yaml:"generator_drift,omitempty"`
}

// StalePathRule flags text in canonical files that refers to an outdated path.
// Conditions may be given inline or under a nested conditions mapping.
type StalePathRule struct {
	Pattern            string      `yaml:"pattern"`
	Severity           string      `yaml:"severity,omitempty"`
	Message            string      `yaml:"message,omitempty"`
	Replacement        string      `yaml:"replacement,omitempty"`
	SuggestedFix       []string    `yaml:"suggested_fix,omitempty"`
	CheckExists        bool        `yaml:"check_exists,omitempty"`
	RequirePathContext bool        `yaml:"require_path_context,omitempty"`
	Conditions         *Conditions `yaml:"conditions,omitempty"`
}

// Conditions gate when a stale path rule fires
type Conditions struct {
	CheckExists        bool `yaml:"check_exists,omitempty"`
	RequirePathContext bool `yaml:"require_path_context,omitempty"`
}

// NeedsReplacement reports whether the replacement path must exist for the rule to fire
func (r StalePathRule) NeedsReplacement() bool {
	return r.CheckExists || (r.Conditions != nil && r.Conditions.CheckExists)
}

// NeedsPathContext reports whether matches must sit in a path-like context
func (r StalePathRule) NeedsPathContext() bool {
	return r.RequirePathContext || (r.Conditions != nil && r.Conditions.RequirePathContext)
}

// SeverityName returns the configured severity, MINOR when unset
func (r StalePathRule) SeverityName() string {
	if r.Severity == "" {
		return "MINOR"
	}
	return r.Severity
}

// ValidatorInventory locates the validator registry and tunes omission thresholds
type ValidatorInventory struct {
	Registry              string   `yaml:"registry"`
	Directory             string   `yaml:"directory"`
	FileGlob              string   `yaml:"file_glob"`
	OmissionThreshold     float64  `yaml:"omission_threshold"`
	GeneratedDocs         []string `yaml:"generated_docs"`
	GeneratedMinOmissions int      `yaml:"generated_min_omissions"`
}

// IsGenerated reports whether doc is a generated document expected to be exhaustive
func (v ValidatorInventory) IsGenerated(doc string) bool {
	for _, g := range v.GeneratedDocs {
		if g == doc {
			return true
		}
	}
	return false
}

// LinkValidation controls the canonical-scope link check
type LinkValidation struct {
	Enabled *bool    `yaml:"enabled,omitempty"`
	Ignore  []string `yaml:"ignore,omitempty"`
}

// IsEnabled defaults to true
func (l LinkValidation) IsEnabled() bool {
	return l.Enabled == nil || *l.Enabled
}

// Ignores reports whether a link target matches an ignore glob
func (l LinkValidation) Ignores(target string) bool {
	return MatchAny(l.Ignore, target)
}

// ArchiveCandidates configures orphan detection
type ArchiveCandidates struct {
	MinAgeDays       int              `yaml:"min_age_days"`
	CandidateClasses []CandidateClass `yaml:"candidate_classes,omitempty"`
}

// CandidateClass describes a family of files that may be archived when unreferenced
type CandidateClass struct {
	PathPattern string   `yaml:"path_pattern"`
	Exclude     []string `yaml:"exclude,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// Match returns the first class matching rel, honouring each class's excludes
func (a ArchiveCandidates) Match(rel string) (CandidateClass, bool) {
	for _, cc := range a.CandidateClasses {
		if cc.PathPattern == "" || !Match(cc.PathPattern, rel) {
			continue
		}
		if MatchAny(cc.Exclude, rel) {
			continue
		}
		if cc.Description == "" {
			cc.Description = "Matched candidate class"
		}
		return cc, true
	}
	return CandidateClass{}, false
}

// GeneratorRule tunes staleness detection for one generated document
type GeneratorRule struct {
	AllowedSHALagCommits     int      `yaml:"allowed_sha_lag_commits"`
	SuspectedCauses          []string `yaml:"suspected_causes,omitempty"`
	InvestigationSteps       []string `yaml:"investigation_steps,omitempty"`
	FixCommand               string   `yaml:"fix_command,omitempty"`
	DirectoryMapMinOmissions int      `yaml:"directory_map_min_omissions,omitempty"`
}

// Generator returns the rule for doc with defaults filled in
func (r *Rules) Generator(doc string) GeneratorRule {
	g := r.GeneratorDrift[doc]
	if len(g.SuspectedCauses) == 0 {
		g.SuspectedCauses = []string{
			"Generator uses hardcoded validator list",
			"Directory walker has filter excluding non-houston validators",
		}
	}
	if len(g.InvestigationSteps) == 0 {
		g.InvestigationSteps = []string{
			"Check generator source for hardcoded validator patterns",
			"Verify template includes all check_*.py files",
			"Regenerate primer with current generator to confirm",
		}
	}
	if g.FixCommand == "" {
		g.FixCommand = "generate-project-primer"
	}
	if g.DirectoryMapMinOmissions <= 0 {
		g.DirectoryMapMinOmissions = 2
	}
	if g.AllowedSHALagCommits < 0 {
		g.AllowedSHALagCommits = 0
	}
	return g
}

// IsExcluded reports whether a repo-relative path matches an exclude glob
func (r *Rules) IsExcluded(rel string) bool {
	return MatchAny(r.Excludes, rel)
}

// IsProtected reports whether a repo-relative path may never be proposed for archiving
func (r *Rules) IsProtected(rel string) bool {
	return MatchAny(r.ProtectedFromArchive, rel)
}

// Match reports whether a slash-separated relative path matches a glob.
// `*` stays within one path segment and `**` spans directories.
func Match(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}

// MatchAny reports whether rel matches any of the patterns
func MatchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if Match(p, rel) {
			return true
		}
	}
	return false
}

// IsGlob reports whether a canonical scope entry is a pattern rather than a literal path
func IsGlob(pattern string) bool {
	return doublestar.ValidatePattern(pattern) && containsMeta(pattern)
}

func containsMeta(s string) bool {
	for _, c := range s {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
