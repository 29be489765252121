package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bettyprotocol/betty-drift/internal/drift"
)

var severityEmoji = map[drift.Severity]string{
	drift.SeverityCritical: "🔴",
	drift.SeverityMajor:    "🟠",
	drift.SeverityMinor:    "🟡",
	drift.SeverityInfo:     "🔵",
}

// section is one category block of the markdown report, in render order
type section struct {
	category drift.Category
	title    string
}

var sections = []section{
	{drift.CategoryBrokenLink, "Broken Links"},
	{drift.CategoryDocContradiction, "Canonical Doc Contradictions"},
	{drift.CategoryGeneratorDrift, "Generator Drift Suspects"},
	{drift.CategoryStalePath, "Stale Path References"},
	{drift.CategoryMetaMismatch, "META.yaml Drift"},
	{drift.CategoryOrphanCandidate, "Orphan/Archive Candidates"},
	{drift.CategoryMisplaced, "Misplaced Artifacts"},
	{drift.CategoryConfigWarning, "Configuration Warnings"},
}

type mdWriter struct {
	b strings.Builder
}

func (w *mdWriter) line(format string, args ...any) {
	if len(args) == 0 {
		w.b.WriteString(format)
	} else {
		fmt.Fprintf(&w.b, format, args...)
	}
	w.b.WriteByte('\n')
}

func (w *mdWriter) blank() { w.b.WriteByte('\n') }

// Markdown renders the human-readable report
func Markdown(r *drift.Report) string {
	w := &mdWriter{}

	w.line("# Drift Report: %s", r.RepoName)
	w.blank()
	w.line("**Generated**: %s", r.GeneratedAt.Format(time.RFC3339))
	w.line("**Repo SHA**: %s", r.RepoSHA)
	w.line("**Repo Branch**: %s", r.RepoBranch)
	w.line("**Level**: %d (%s)", r.Level, drift.LevelName(r.Level))
	w.line("**Detector Version**: %s", r.DetectorVersion)
	if r.RunID != "" {
		w.line("**Run ID**: %s", r.RunID)
	}
	w.blank()
	w.line("---")
	w.blank()

	sum := r.Summary()
	w.line("## Executive Summary")
	w.blank()
	w.line("| Severity | Count |")
	w.line("|----------|-------|")
	w.line("| CRITICAL | %d |", sum.Critical)
	w.line("| MAJOR | %d |", sum.Major)
	w.line("| MINOR | %d |", sum.Minor)
	w.line("| INFO | %d |", sum.Info)
	w.line("| **Total** | **%d** |", sum.Total)
	w.blank()

	w.inventorySection(r)

	for _, sec := range sections {
		findings := r.ByCategory(sec.category)
		if len(findings) == 0 {
			continue
		}
		w.line("## %s", sec.title)
		w.blank()
		switch sec.category {
		case drift.CategoryGeneratorDrift:
			for _, f := range findings {
				w.finding(f)
				w.generatorDetails(f)
				w.blank()
			}
		case drift.CategoryOrphanCandidate:
			w.orphans(findings)
		default:
			for _, f := range findings {
				w.finding(f)
			}
		}
		w.blank()
	}

	w.patchPlan(r)

	w.line("---")
	w.blank()
	w.b.WriteString("*Generated by `betty-drift`*")
	return w.b.String()
}

func (w *mdWriter) inventorySection(r *drift.Report) {
	findings := r.ByCategory(drift.CategoryInventoryMismatch)
	if len(findings) == 0 && len(r.Inventories) == 0 {
		return
	}
	w.line("## Inventory Diffs")
	w.blank()

	if inv, ok := r.Inventories["validators"].(map[string]any); ok && len(inv) > 0 {
		w.line("### Validators")
		w.line("- **Ground truth** (`validators/__init__.py`): %d validators", listLen(inv["ground_truth"]))
		for _, doc := range inventoryDocOrder(inv) {
			w.line("- **%s**: %d validators found", doc, listLen(inv[doc]))
		}
		w.blank()
	}

	for _, f := range findings {
		w.finding(f)
	}
	w.blank()
}

// inventoryDocOrder lists documents in canonical order, then any others sorted
func inventoryDocOrder(inv map[string]any) []string {
	var out []string
	known := map[string]bool{"ground_truth": true}
	for _, doc := range drift.InventoryDocs {
		known[doc] = true
		if _, ok := inv[doc]; ok {
			out = append(out, doc)
		}
	}
	var rest []string
	for doc := range inv {
		if !known[doc] {
			rest = append(rest, doc)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func listLen(v any) int {
	switch l := v.(type) {
	case []string:
		return len(l)
	case []any:
		return len(l)
	}
	return 0
}

func (w *mdWriter) finding(f drift.Finding) {
	emoji, ok := severityEmoji[f.Severity]
	if !ok {
		emoji = "⚪"
	}
	w.line("### %s (%s) %s", f.ID, f.Severity, emoji)
	w.blank()

	if f.File != "" {
		loc := fmt.Sprintf("**File**: `%s`", f.File)
		if f.Line > 0 {
			loc += fmt.Sprintf(" (line %d)", f.Line)
		}
		w.line("%s", loc)
	}
	w.line("**Issue**: %s", f.Message)
	if f.RequiresReview {
		w.line("**Note**: Requires manual review")
	}
	if len(f.SuggestedFix) > 0 {
		w.blank()
		w.line("**Suggested Fix**:")
		for _, fix := range f.SuggestedFix {
			w.line("- %s", fix)
		}
	}
	w.blank()
}

func (w *mdWriter) generatorDetails(f drift.Finding) {
	if causes := stringList(f.Context["suspected_causes"]); len(causes) > 0 {
		w.blank()
		w.line("**Suspected Causes**:")
		for _, c := range causes {
			w.line("- %s", c)
		}
	}
	if steps := stringList(f.Context["investigation_steps"]); len(steps) > 0 {
		w.blank()
		w.line("**Investigation Steps**:")
		for i, s := range steps {
			w.line("%d. %s", i+1, s)
		}
	}
}

func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

func (w *mdWriter) orphans(findings []drift.Finding) {
	w.line("Files that may be candidates for archiving. Items marked with")
	w.line("`requires_review: true` need manual verification before action.")
	w.blank()

	var high, low []drift.Finding
	for _, f := range findings {
		if f.Confidence == drift.ConfidenceHigh {
			high = append(high, f)
		} else {
			low = append(low, f)
		}
	}
	if len(high) > 0 {
		w.line("### High Confidence")
		w.blank()
		for _, f := range high {
			w.finding(f)
		}
	}
	if len(low) > 0 {
		w.line("### Low Confidence (Manual Review Required)")
		w.blank()
		for _, f := range low {
			w.finding(f)
		}
	}
}

func (w *mdWriter) patchPlan(r *drift.Report) {
	if len(r.Findings) == 0 {
		return
	}
	w.line("## Proposed Patch Plan")
	w.blank()
	w.line("Priority actions based on findings:")
	w.blank()

	for _, tier := range []struct {
		severity drift.Severity
		title    string
	}{
		{drift.SeverityCritical, "Critical (Address Immediately)"},
		{drift.SeverityMajor, "Major (Address Soon)"},
	} {
		findings := r.BySeverity(tier.severity)
		if len(findings) == 0 {
			continue
		}
		w.line("### %s", tier.title)
		for _, f := range findings {
			item := fmt.Sprintf("1. **%s**: %s", f.ID, f.Message)
			if f.RequiresReview {
				item += " _(requires manual review)_"
			}
			w.line("%s", item)
			for i, fix := range f.SuggestedFix {
				if i == 2 {
					break
				}
				w.line("   - %s", fix)
			}
		}
		w.blank()
	}
}
