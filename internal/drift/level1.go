package drift

import (
	"context"
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/bettyprotocol/betty-drift/internal/exec"
	"github.com/bettyprotocol/betty-drift/internal/extract"
	"github.com/bettyprotocol/betty-drift/internal/rules"
)

// maxOutputContext bounds delegated script output kept in a finding
const maxOutputContext = 500

// BettyTopLevelDirs is the allow-list of top-level directories
var BettyTopLevelDirs = map[string]bool{
	"00_admin": true, "00_run": true, "10_docs": true, "20_approvals": true, "20_inbox": true,
	"20_receipts": true, "30_config": true, "40_src": true, "50_data": true, "50_reference_reports": true,
	"60_tests": true, "70_evidence": true, "80_evidence_packages": true, "80_reports": true,
	"90_archive": true, "schemas": true, "protocols": true, "taxonomies": true, "validators": true,
	"scripts": true, "tests": true, "examples": true, "policy": true, "registry": true, "docs": true,
	"workspace": true,
}

func checkCanonicalScope(_ context.Context, s *Scan) []Finding {
	var findings []Finding
	for _, entry := range s.Rules.CanonicalScope {
		if rules.IsGlob(entry) {
			if len(s.globFiles(entry)) > 0 {
				continue
			}
			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Category: CategoryConfigWarning,
				Message:  fmt.Sprintf("Canonical scope glob '%s' matches zero files", entry),
				SuggestedFix: []string{
					fmt.Sprintf("Check if pattern '%s' is correct", entry),
					"Remove pattern if directory doesn't exist",
				},
			})
			continue
		}
		if !s.exists(entry) {
			findings = append(findings, Finding{
				Severity:     SeverityInfo,
				Category:     CategoryConfigWarning,
				Message:      fmt.Sprintf("Canonical scope file '%s' does not exist", entry),
				SuggestedFix: []string{fmt.Sprintf("Create file '%s' or remove from canonical_scope", entry)},
			})
		}
	}
	return findings
}

func checkTopLevelDirs(_ context.Context, s *Scan) []Finding {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		s.logger().Warn("could not list repository root", "error", err)
		return nil
	}

	var unexpected []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !BettyTopLevelDirs[e.Name()] {
			unexpected = append(unexpected, e.Name())
		}
	}
	sort.Strings(unexpected)

	findings := make([]Finding, 0, len(unexpected))
	for _, name := range unexpected {
		findings = append(findings, Finding{
			Severity: SeverityMinor,
			Category: CategoryInventoryMismatch,
			Message:  fmt.Sprintf("Unexpected top-level directory: %s", name),
			File:     name,
			SuggestedFix: []string{
				fmt.Sprintf("Move %s/ to appropriate location per Betty Protocol", name),
				"Or add to allowed list if intentional",
			},
		})
	}
	return findings
}

func checkValidatorRegistry(_ context.Context, s *Scan) []Finding {
	if !s.Profile.HasValidators {
		s.logger().Debug("skipping validator registry, no validators subsystem")
		return nil
	}

	inv := s.Rules.ValidatorInventory
	registered := extract.RegisteredValidators(s.abs(inv.Registry))
	actual := extract.ValidatorNames(extract.ValidatorFiles(s.abs(inv.Directory), inv.FileGlob))

	var findings []Finding
	if unregistered := actual.Minus(registered); len(unregistered) > 0 {
		names := unregistered.Sorted()
		findings = append(findings, Finding{
			Severity: SeverityCritical,
			Category: CategoryInventoryMismatch,
			Message:  fmt.Sprintf("Validators exist but not in AVAILABLE_VALIDATORS: %s", formatList(names)),
			File:     inv.Registry,
			SuggestedFix: []string{
				"Add missing validators to AVAILABLE_VALIDATORS dict",
				fmt.Sprintf("Validators to add: %s", strings.Join(names, ", ")),
			},
			Context: map[string]any{"unregistered": names},
		})
	}
	if missing := registered.Minus(actual); len(missing) > 0 {
		names := missing.Sorted()
		findings = append(findings, Finding{
			Severity: SeverityCritical,
			Category: CategoryInventoryMismatch,
			Message:  fmt.Sprintf("Validators registered but files missing: %s", formatList(names)),
			File:     inv.Registry,
			SuggestedFix: []string{
				"Create missing validator files",
				"Or remove from AVAILABLE_VALIDATORS if intentional",
			},
			Context: map[string]any{"missing": names},
		})
	}
	return findings
}

func checkSchemaInventory(_ context.Context, s *Scan) []Finding {
	var findings []Finding
	for _, dir := range []string{"schemas", "taxonomies"} {
		info, err := os.Stat(s.abs(dir))
		if err != nil || !info.IsDir() {
			findings = append(findings, Finding{
				Severity:     SeverityMajor,
				Category:     CategoryInventoryMismatch,
				Message:      fmt.Sprintf("Missing %s/ directory", dir),
				SuggestedFix: []string{fmt.Sprintf("Create %s/ directory with appropriate files", dir)},
			})
			continue
		}
		if !hasDataFiles(s.abs(dir)) {
			findings = append(findings, Finding{
				Severity:     SeverityMinor,
				Category:     CategoryInventoryMismatch,
				Message:      fmt.Sprintf("%s/ directory is empty", dir),
				File:         dir,
				SuggestedFix: []string{fmt.Sprintf("Add schema/taxonomy files to %s/", dir)},
			})
		}
	}
	return findings
}

func hasDataFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		switch strings.ToLower(path.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			return true
		}
	}
	return false
}

// staleRule is a stale path rule ready to match
type staleRule struct {
	rules.StalePathRule
	re       *regexp.Regexp
	severity Severity
}

// compileStaleRules validates every configured rule. Rules with an invalid
// regex or severity, or whose check_exists guard fails, are dropped.
func (s *Scan) compileStaleRules() []staleRule {
	var out []staleRule
	for _, r := range s.Rules.StalePathPatterns {
		if r.Pattern == "" {
			continue
		}
		sev, err := ParseSeverity(r.SeverityName())
		if err != nil {
			s.logger().Warn("skipping stale path rule", "pattern", r.Pattern, "error", err)
			continue
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			s.logger().Warn("skipping stale path rule with invalid regex", "pattern", r.Pattern, "error", err)
			continue
		}
		if r.NeedsReplacement() && !s.exists(strings.TrimRight(r.Replacement, "/")) {
			s.logger().Debug("stale path replacement missing, rule skipped", "pattern", r.Pattern, "replacement", r.Replacement)
			continue
		}
		out = append(out, staleRule{StalePathRule: r, re: re, severity: sev})
	}
	return out
}

func checkStalePaths(_ context.Context, s *Scan) []Finding {
	compiled := s.compileStaleRules()
	if len(compiled) == 0 {
		return nil
	}

	var findings []Finding
	for _, rel := range s.canonicalFiles(false) {
		data, err := os.ReadFile(s.abs(rel))
		if err != nil {
			s.logger().Debug("could not read canonical file", "file", rel, "error", err)
			continue
		}
		lines := strings.Split(string(data), "\n")

		for _, r := range compiled {
			message := r.Message
			if message == "" {
				message = fmt.Sprintf("Stale path pattern: %s", r.Pattern)
			}
			for i, line := range lines {
				line = strings.TrimSuffix(line, "\r")
				for _, m := range r.re.FindAllStringIndex(line, -1) {
					if r.NeedsPathContext() && !extract.InPathContext(line, m[0], m[1]) {
						continue
					}
					findings = append(findings, Finding{
						Severity:     r.severity,
						Category:     CategoryStalePath,
						Message:      message,
						File:         rel,
						Line:         i + 1,
						SuggestedFix: append([]string(nil), r.SuggestedFix...),
						Context: map[string]any{
							"matched":     line[m[0]:m[1]],
							"replacement": r.Replacement,
						},
					})
				}
			}
		}
	}
	return findings
}

func checkRepoContract(ctx context.Context, s *Scan) []Finding {
	const script = "validators/check_repo_contract.py"
	if !s.isFile(script) {
		return nil
	}
	res := s.runScript(ctx, "repo_contract", script)
	if !delegatedFailure(res) {
		return nil
	}
	return []Finding{{
		Severity:     SeverityMajor,
		Category:     CategoryInventoryMismatch,
		Message:      "Repo contract validation failed",
		File:         script,
		SuggestedFix: []string{"Review validator output and fix issues"},
		Context:      map[string]any{"output": exec.Truncate(res.Combined(), maxOutputContext)},
	}}
}

func checkReadmeRepoCard(ctx context.Context, s *Scan) []Finding {
	const script = "scripts/validate_readme_repo_card.py"
	if !s.isFile(script) {
		return nil
	}
	res := s.runScript(ctx, "readme_repo_card", script, s.Root)
	if !delegatedFailure(res) {
		return nil
	}
	return []Finding{{
		Severity:     SeverityMajor,
		Category:     CategoryBrokenLink,
		Message:      "README repo card validation failed",
		File:         "README.md",
		SuggestedFix: []string{"Fix README repo card issues"},
		Context:      map[string]any{"output": exec.Truncate(res.Combined(), maxOutputContext)},
	}}
}

// delegatedFailure reports whether a script ran to completion and exited
// non-zero. Timeouts and spawn failures are soft and produce no finding.
func delegatedFailure(res *exec.Result) bool {
	return res != nil && res.Outcome == exec.OutcomeExit
}

func formatList(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
