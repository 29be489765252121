package drift

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// rootConfigAllowed may live at the repository root
var rootConfigAllowed = map[string]bool{
	"pyproject.toml": true,
	"package.json":   true,
	"META.yaml":      true,
	"RELATIONS.yaml": true,
	"glossary.yaml":  true,
}

var configExtensions = map[string]bool{".json": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true}

// validatorsAllowedNonPython may sit in validators/ next to the validators
var validatorsAllowedNonPython = map[string]bool{"README.md": true, "__init__.py": true, "__pycache__": true}

func checkOrphanCandidates(_ context.Context, s *Scan) []Finding {
	graph := s.BuildReferenceGraph()
	archive := s.Rules.ArchiveCandidates
	now := s.now()

	var findings []Finding
	for _, rel := range s.markdownFiles() {
		if s.Rules.IsProtected(rel) {
			continue
		}
		if inbound := graph.Inbound(rel); len(inbound) > 0 {
			continue
		}
		class, ok := archive.Match(rel)
		if !ok {
			continue
		}

		age := 0
		if info, err := os.Stat(s.abs(rel)); err == nil {
			if d := now.Sub(info.ModTime()); d > 0 {
				age = int(d.Hours() / 24)
			}
		}

		confidence := ConfidenceLow
		if age >= archive.MinAgeDays {
			confidence = ConfidenceHigh
		}

		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Category: CategoryOrphanCandidate,
			Message:  fmt.Sprintf("Orphan candidate: %s", rel),
			File:     rel,
			SuggestedFix: []string{
				"Review if file is still needed",
				"If obsolete, move to 90_archive/",
				"If needed, add reference from canonical doc",
			},
			Confidence:     confidence,
			RequiresReview: confidence == ConfidenceLow,
			Context: map[string]any{
				"candidate_class": class.Description,
				"age_days":        age,
				"age_threshold":   archive.MinAgeDays,
				"inbound_refs":    []string{},
			},
		})
	}
	return findings
}

// markdownFiles lists every markdown file under the root, excludes applied.
// Only .git is pruned during the walk.
func (s *Scan) markdownFiles() []string {
	var out []string
	_ = filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		rel, ok := s.rel(p)
		if !ok || s.Rules.IsExcluded(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	return out
}

func checkMisplacedArtifacts(_ context.Context, s *Scan) []Finding {
	var findings []Finding

	if entries, err := os.ReadDir(s.abs("validators")); err == nil {
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			name := e.Name()
			if path.Ext(name) == ".py" || validatorsAllowedNonPython[name] {
				continue
			}
			rel := "validators/" + name
			if s.Rules.IsProtected(rel) {
				continue
			}
			findings = append(findings, Finding{
				Severity: SeverityMinor,
				Category: CategoryMisplaced,
				Message:  fmt.Sprintf("Non-Python file in validators/: %s", name),
				File:     rel,
				SuggestedFix: []string{
					fmt.Sprintf("Move %s to appropriate location", name),
					"validators/ should only contain Python validators",
				},
			})
		}
	}

	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return findings
	}
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !configExtensions[strings.ToLower(path.Ext(name))] {
			continue
		}
		if rootConfigAllowed[name] || s.Rules.IsProtected(name) {
			continue
		}
		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Category: CategoryMisplaced,
			Message:  fmt.Sprintf("Config file at root level: %s", name),
			File:     name,
			SuggestedFix: []string{
				fmt.Sprintf("Consider moving %s to 30_config/", name),
				"Or leave if root-level placement is intentional",
			},
			Confidence:     ConfidenceLow,
			RequiresReview: true,
		})
	}
	return findings
}
