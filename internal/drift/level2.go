package drift

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bettyprotocol/betty-drift/internal/detect"
	"github.com/bettyprotocol/betty-drift/internal/exec"
	"github.com/bettyprotocol/betty-drift/internal/extract"
	"github.com/bettyprotocol/betty-drift/internal/metadrift"
	"github.com/bettyprotocol/betty-drift/internal/rules"
)

// InventoryDocs are the canonical documents compared against the validator
// registry, in report order.
var InventoryDocs = []string{
	"README.md",
	"CLAUDE.md",
	"validators/README.md",
	"10_docs/STANDARDS_GUIDE.md",
	rules.PrimerDoc,
}

func checkValidatorConsistency(_ context.Context, s *Scan) []Finding {
	if !s.Profile.HasValidators {
		s.logger().Debug("skipping validator consistency, no validators subsystem")
		return nil
	}

	inv := s.Rules.ValidatorInventory
	groundTruth := extract.RegisteredValidators(s.abs(inv.Registry))
	if len(groundTruth) == 0 {
		return []Finding{{
			Severity:     SeverityCritical,
			Category:     CategoryInventoryMismatch,
			Message:      "Could not load ground truth validators from __init__.py",
			File:         inv.Registry,
			SuggestedFix: []string{"Ensure validators/__init__.py exists with AVAILABLE_VALIDATORS"},
		}}
	}

	inventories := map[string]any{"ground_truth": groundTruth.Sorted()}
	s.inventories = map[string]any{"validators": inventories}

	var findings []Finding
	for _, doc := range InventoryDocs {
		if !s.isFile(doc) {
			continue
		}
		claimed := extract.Claimed(doc, s.abs(doc))
		inventories[doc] = claimed.Sorted()

		if missing := groundTruth.Minus(claimed); len(missing) > 0 && len(claimed) > 0 {
			severity := SeverityInfo
			if float64(len(missing))/float64(len(groundTruth)) > inv.OmissionThreshold {
				severity = SeverityMajor
			}
			if inv.IsGenerated(doc) && len(missing) >= inv.GeneratedMinOmissions {
				severity = SeverityMajor
			}
			names := missing.Sorted()
			findings = append(findings, Finding{
				Severity: severity,
				Category: CategoryDocContradiction,
				Message:  fmt.Sprintf("%s omits %d validators: %s", doc, len(missing), formatList(names)),
				File:     doc,
				SuggestedFix: []string{
					fmt.Sprintf("Add missing validators to %s", doc),
					"Or regenerate if this is a derived document",
				},
				Context: map[string]any{
					"ground_truth_count": len(groundTruth),
					"claimed_count":      len(claimed),
					"missing":            names,
				},
			})
		}

		if extra := claimed.Minus(groundTruth); len(extra) > 0 {
			names := extra.Sorted()
			findings = append(findings, Finding{
				Severity: SeverityMajor,
				Category: CategoryDocContradiction,
				Message:  fmt.Sprintf("%s mentions non-existent validators: %s", doc, formatList(names)),
				File:     doc,
				SuggestedFix: []string{
					fmt.Sprintf("Remove references to non-existent validators from %s", doc),
					"Or create the missing validator files",
				},
				Context: map[string]any{"extra": names},
			})
		}
	}
	return findings
}

func checkInternalLinks(_ context.Context, s *Scan) []Finding {
	lv := s.Rules.LinkValidation
	if !lv.IsEnabled() {
		s.logger().Debug("link validation disabled by rules")
		return nil
	}

	var findings []Finding
	for _, rel := range s.canonicalFiles(true) {
		for _, link := range extract.InternalLinks(s.abs(rel), s.Root) {
			if link.Exists || lv.Ignores(link.Target) {
				continue
			}
			column := link.Column
			resolved := link.Resolved
			if r, ok := s.rel(link.Resolved); ok {
				resolved = r
			}
			findings = append(findings, Finding{
				Severity: SeverityCritical,
				Category: CategoryBrokenLink,
				Message:  fmt.Sprintf("Broken link to '%s'", link.Target),
				File:     rel,
				Line:     link.Line,
				Column:   &column,
				SuggestedFix: []string{
					fmt.Sprintf("Fix or remove link to '%s'", link.Target),
					fmt.Sprintf("Target resolved to: %s", resolved),
				},
				Context: map[string]any{
					"target":   link.Target,
					"resolved": resolved,
				},
			})
		}
	}
	return findings
}

func checkMetaYAML(ctx context.Context, s *Scan) []Finding {
	if !s.isFile("META.yaml") {
		return []Finding{{
			Severity:     SeverityMinor,
			Category:     CategoryMetaMismatch,
			Message:      "META.yaml not found",
			SuggestedFix: []string{"Create META.yaml with project metadata"},
		}}
	}

	const script = "scripts/check_meta_yaml_drift.py"
	if s.isFile(script) {
		res := s.runScript(ctx, "meta_yaml_drift", script, s.Root)
		if !delegatedFailure(res) {
			return nil
		}
		return []Finding{{
			Severity:     SeverityMinor,
			Category:     CategoryMetaMismatch,
			Message:      "META.yaml drift detected",
			File:         "META.yaml",
			SuggestedFix: []string{"Run: python scripts/check_meta_yaml_drift.py --fix"},
			Context:      map[string]any{"output": exec.Truncate(res.Combined(), maxOutputContext)},
		}}
	}

	result, err := metadrift.Check(s.Root, s.now())
	if err != nil {
		s.logger().WithError(err).Warn("could not analyse META.yaml")
		return []Finding{{
			Severity:     SeverityMinor,
			Category:     CategoryMetaMismatch,
			Message:      "META.yaml could not be parsed",
			File:         "META.yaml",
			SuggestedFix: []string{"Fix the YAML syntax in META.yaml", "Run: betty-drift meta"},
			Context:      map[string]any{"error": err.Error()},
		}}
	}
	if !result.HasDrift() {
		return nil
	}
	return []Finding{{
		Severity:     SeverityMinor,
		Category:     CategoryMetaMismatch,
		Message:      "META.yaml drift detected",
		File:         "META.yaml",
		SuggestedFix: []string{"Update META.yaml to match the repository", "Run: betty-drift meta"},
		Context:      map[string]any{"issues": result.Lines()},
	}}
}

func checkGeneratorDrift(ctx context.Context, s *Scan) []Finding {
	doc := rules.PrimerDoc
	data, err := os.ReadFile(s.abs(doc))
	if err != nil {
		return nil
	}
	content := string(data)
	gen := s.Rules.Generator(doc)

	var findings []Finding
	if f, ok := s.primerStaleness(ctx, doc, content, gen); ok {
		findings = append(findings, f)
	}

	if !s.Profile.HasValidators {
		return findings
	}

	inv := s.Rules.ValidatorInventory
	groundTruth := extract.RegisteredValidators(s.abs(inv.Registry))
	listed := extract.ClaimedByFileMentions(s.abs(doc))
	missing := groundTruth.Minus(listed)
	if len(missing) < gen.DirectoryMapMinOmissions {
		return findings
	}

	names := missing.Sorted()
	return append(findings, Finding{
		Severity: SeverityMajor,
		Category: CategoryGeneratorDrift,
		Message:  fmt.Sprintf("%s directory map omits %d validators", doc, len(missing)),
		File:     doc,
		Line:     extract.DirectoryMapLine(content),
		SuggestedFix: []string{
			fmt.Sprintf("Regenerate %s with current generator", doc),
			fmt.Sprintf("Missing validators: %s", strings.Join(names, ", ")),
		},
		Context: map[string]any{
			"ground_truth_count": len(groundTruth),
			"primer_count":       len(listed),
			"missing":            names,
			"suspected_cause":    "Generator directory walker may have filter excluding portable validators",
		},
	})
}

// primerStaleness compares the SHA recorded in the primer against HEAD
func (s *Scan) primerStaleness(ctx context.Context, doc, content string, gen rules.GeneratorRule) (Finding, bool) {
	primerSHA, ok := extract.PrimerSHA(content)
	if !ok {
		return Finding{}, false
	}
	current := s.headShort(ctx)
	if current == detect.Unknown || sameCommit(primerSHA, current) {
		return Finding{}, false
	}

	lag, ok := s.commitDistance(ctx, primerSHA, current)
	if ok && lag <= gen.AllowedSHALagCommits {
		return Finding{
			Severity: SeverityInfo,
			Category: CategoryGeneratorDrift,
			Message: fmt.Sprintf("%s is %d commit(s) behind HEAD (within allowed lag of %d)",
				doc, lag, gen.AllowedSHALagCommits),
			File: doc,
			SuggestedFix: []string{
				"No action needed - primer SHA lag is within allowed tolerance",
				fmt.Sprintf("Current: %s, Primer: %s", current, primerSHA),
			},
			Context: map[string]any{
				"primer_sha":  primerSHA,
				"current_sha": current,
				"sha_lag":     lag,
				"allowed_lag": gen.AllowedSHALagCommits,
			},
		}, true
	}

	fctx := map[string]any{
		"primer_sha":          primerSHA,
		"current_sha":         current,
		"suspected_causes":    gen.SuspectedCauses,
		"investigation_steps": gen.InvestigationSteps,
	}
	if ok {
		fctx["sha_lag"] = lag
	}
	return Finding{
		Severity: SeverityMajor,
		Category: CategoryGeneratorDrift,
		Message:  fmt.Sprintf("%s is stale (primer SHA: %s, current: %s)", doc, primerSHA, current),
		File:     doc,
		SuggestedFix: []string{
			fmt.Sprintf("Regenerate: %s", gen.FixCommand),
			"Review generator for hardcoded patterns",
		},
		Context: fctx,
	}, true
}

// sameCommit treats a short SHA and its full form as the same commit
func sameCommit(a, b string) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	return a != "" && strings.HasPrefix(b, a)
}
