package drift

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bettyprotocol/betty-drift/internal/detect"
	"github.com/bettyprotocol/betty-drift/internal/log"
)

// Check is one named detection step. Run never fails; anything that goes
// wrong is either a finding or a log line.
type Check struct {
	Name  string
	Level int
	Run   func(ctx context.Context, s *Scan) []Finding
}

// Checks returns the fixed, ordered list of checks for all levels
func Checks() []Check {
	return []Check{
		{Name: "canonical_scope", Level: 1, Run: checkCanonicalScope},
		{Name: "top_level_dirs", Level: 1, Run: checkTopLevelDirs},
		{Name: "validator_registry", Level: 1, Run: checkValidatorRegistry},
		{Name: "schema_inventory", Level: 1, Run: checkSchemaInventory},
		{Name: "stale_paths", Level: 1, Run: checkStalePaths},
		{Name: "repo_contract", Level: 1, Run: checkRepoContract},
		{Name: "readme_repo_card", Level: 1, Run: checkReadmeRepoCard},

		{Name: "validator_consistency", Level: 2, Run: checkValidatorConsistency},
		{Name: "internal_links", Level: 2, Run: checkInternalLinks},
		{Name: "meta_yaml", Level: 2, Run: checkMetaYAML},
		{Name: "generator_drift", Level: 2, Run: checkGeneratorDrift},

		{Name: "orphan_candidates", Level: 3, Run: checkOrphanCandidates},
		{Name: "misplaced_artifacts", Level: 3, Run: checkMisplacedArtifacts},
	}
}

// LevelName returns the human label of a detection level
func LevelName(level int) string {
	switch level {
	case 1:
		return "Fast Inventory"
	case 2:
		return "Canonical Consistency"
	case 3:
		return "Deep Dive + Archive Candidates"
	default:
		return "Unknown"
	}
}

// Engine runs checks in order and assigns finding ids
type Engine struct {
	checks  []Check
	counter Counter
}

// NewEngine creates an engine over the standard check list
func NewEngine() *Engine {
	return &Engine{checks: Checks()}
}

// NewEngineWithChecks creates an engine over a custom check list
func NewEngineWithChecks(checks []Check) *Engine {
	return &Engine{checks: checks}
}

// Run executes every check up to and including level and returns the
// findings in detection order. It stops early, returning what was found so
// far together with the context error, if ctx is cancelled between checks.
func (e *Engine) Run(ctx context.Context, s *Scan, level int) ([]Finding, error) {
	logger := s.logger()
	findings := []Finding{}

	current := 0
	for _, check := range e.checks {
		if check.Level > level {
			continue
		}
		if err := ctx.Err(); err != nil {
			return findings, err
		}
		if check.Level != current {
			current = check.Level
			logger.Info("running level", "detection_level", current, "name", LevelName(current))
		}

		start := time.Now()
		produced := check.Run(ctx, s)
		elapsed := time.Since(start)
		s.Metrics.RecordCheck(check.Level, check.Name, elapsed)

		for _, f := range produced {
			f = e.finalize(check.Level, f)
			findings = append(findings, f)
			s.Metrics.RecordFinding(check.Level, string(f.Severity), string(f.Category))
		}
		if logger.Enabled(ctx, log.LevelDebug) {
			logger.ForCheck(check.Level, check.Name).Debug("check complete", "findings", len(produced), "duration", elapsed)
		}
	}
	return findings, nil
}

// finalize stamps id, level and fingerprint and normalises confidence
func (e *Engine) finalize(level int, f Finding) Finding {
	f.ID = e.counter.Next(level)
	f.Level = level
	if f.Severity == "" {
		f.Severity = f.Category.DefaultSeverity()
	}
	if f.Confidence == "" {
		f.Confidence = ConfidenceHigh
	}
	if f.Confidence == ConfidenceLow {
		f.RequiresReview = true
	}
	if f.SuggestedFix == nil {
		f.SuggestedFix = []string{}
	}
	f.Fingerprint = Fingerprint(f)
	return f
}

// Options identify a run in the resulting report
type Options struct {
	Level           int
	DetectorVersion string
}

// Detect runs the engine and aggregates the result into a report. Git
// metadata is read live; unreadable values become "unknown".
func Detect(ctx context.Context, s *Scan, opts Options) (*Report, error) {
	s.Metrics.RecordRun(opts.Level)

	gitCtx := detect.GitContext{SHA: detect.Unknown, Branch: detect.Unknown}
	if s.Git != nil {
		gitCtx = s.Git.Context(ctx)
	}
	report := NewReport(filepath.Base(s.Root), gitCtx.SHA, gitCtx.Branch, opts.Level, s.now(), opts.DetectorVersion)

	findings, err := NewEngine().Run(ctx, s, opts.Level)
	report.Findings = findings
	if opts.Level >= 2 && s.Profile.HasValidators && s.inventories != nil {
		report.Inventories = s.inventories
	}
	return report, err
}
