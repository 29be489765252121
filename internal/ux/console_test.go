package ux

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettyprotocol/betty-drift/internal/drift"
	"github.com/bettyprotocol/betty-drift/internal/metadrift"
)

func testReport() *drift.Report {
	r := drift.NewReport("C010_standards", "abc1234", "main", 2,
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), "dev")
	r.Findings = []drift.Finding{
		{ID: "DRIFT-L1-001", Severity: drift.SeverityCritical, Category: drift.CategoryInventoryMismatch},
		{ID: "DRIFT-L2-001", Severity: drift.SeverityMajor, Category: drift.CategoryDocContradiction},
		{ID: "DRIFT-L2-002", Severity: drift.SeverityMajor, Category: drift.CategoryBrokenLink},
		{ID: "DRIFT-L2-003", Severity: drift.SeverityInfo, Category: drift.CategoryGeneratorDrift},
	}
	return r
}

func TestColorEnabled(t *testing.T) {
	orig := isTerminalFn
	t.Cleanup(func() { isTerminalFn = orig })
	isTerminalFn = func(int) bool { return true }

	t.Run("buffer is never a terminal", func(t *testing.T) {
		assert.False(t, ColorEnabled(&bytes.Buffer{}, false))
	})

	t.Run("no-color flag wins", func(t *testing.T) {
		assert.False(t, ColorEnabled(os.Stdout, true))
	})

	t.Run("NO_COLOR environment", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		assert.False(t, ColorEnabled(os.Stdout, false))
	})

	t.Run("terminal file", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		os.Unsetenv("NO_COLOR")
		assert.True(t, ColorEnabled(os.Stdout, false))
	})
}

func TestConsoleSummary(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, true).Summary(testReport())

	out := buf.String()
	assert.Contains(t, out, "Drift Detection Complete (Level 2)")
	assert.Contains(t, out, "  CRITICAL: 1\n")
	assert.Contains(t, out, "  MAJOR:    2\n")
	assert.Contains(t, out, "  MINOR:    0\n")
	assert.Contains(t, out, "  INFO:     1\n")
	assert.Contains(t, out, "  Total:    4\n")

	// most severe first
	assert.Less(t, strings.Index(out, "CRITICAL"), strings.Index(out, "INFO"))
	assert.NotContains(t, out, "\x1b[", "no-color output must not contain escape codes")
}

func TestConsoleHeader(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.Header(Header{Repo: "C010_standards", SHA: "abc1234", Branch: "main", Level: 3, Profile: "validators=true", Rules: "defaults"})
	out := buf.String()
	assert.Contains(t, out, "Level: 3 (Deep Dive + Archive Candidates)")
	assert.Contains(t, out, "Output: console only")

	buf.Reset()
	c.Header(Header{Repo: "r", Level: 1, OutDir: "/repo/70_evidence/drift/r"})
	assert.Contains(t, buf.String(), "Output: /repo/70_evidence/drift/r")
}

func TestConsoleReports(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, true).Reports([]string{
		"out/drift_report_2026-03-01_abc1234.md",
		"out/drift_report_2026-03-01_abc1234.json",
		"out/drift_report_2026-03-01_abc1234.sarif",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Markdown report: "))
	assert.True(t, strings.HasPrefix(lines[1], "JSON report: "))
	assert.True(t, strings.HasPrefix(lines[2], "SARIF report: "))
}

func TestConsoleStrictAndNote(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)
	c.Note("No 70_evidence/ directory found; skipping file output.")
	c.Strict(2)

	out := buf.String()
	assert.Contains(t, out, "Note: No 70_evidence/ directory found; skipping file output.")
	assert.Contains(t, out, "STRICT MODE: 2 CRITICAL finding(s) - exiting with code 1")
}

func TestConsoleMetaResult(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		var buf bytes.Buffer
		NewConsole(&buf, true).MetaResult(&metadrift.Result{Project: "P001_demo"})
		assert.Contains(t, buf.String(), "PASSED (P001_demo)")
	})

	t.Run("drift", func(t *testing.T) {
		var buf bytes.Buffer
		NewConsole(&buf, true).MetaResult(&metadrift.Result{
			Project: "P001_demo",
			Issues:  []metadrift.Issue{{Kind: metadrift.KindMissing, Message: "No META.yaml"}},
		})
		out := buf.String()
		assert.Contains(t, out, "  - MISSING: No META.yaml")
		assert.Contains(t, out, "SUMMARY: 1 issue(s)")
		assert.Contains(t, out, "FAILED")
	})
}
