package ux

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/bettyprotocol/betty-drift/internal/drift"
	"github.com/bettyprotocol/betty-drift/internal/metadrift"
)

// isTerminalFn is swapped in tests
var isTerminalFn = term.IsTerminal

// ColorEnabled reports whether styled output should be written to w. Colour
// is off when noColor is set, when NO_COLOR is present, or when w is not a
// terminal.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminalFn(int(f.Fd()))
}

type styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Path     lipgloss.Style
	Success  lipgloss.Style
	Failure  lipgloss.Style
	severity map[drift.Severity]lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			Title:   plain,
			Muted:   plain,
			Path:    plain,
			Success: plain,
			Failure: plain,
			severity: map[drift.Severity]lipgloss.Style{
				drift.SeverityCritical: plain,
				drift.SeverityMajor:    plain,
				drift.SeverityMinor:    plain,
				drift.SeverityInfo:     plain,
			},
		}
	}
	return styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Path: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")), // Cyan
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Failure: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		severity: map[drift.Severity]lipgloss.Style{
			drift.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
			drift.SeverityMajor:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
			drift.SeverityMinor:    lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
			drift.SeverityInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		},
	}
}

// Console prints the human-facing parts of a run: the verbose header, the
// severity summary, written report paths and notes.
type Console struct {
	out    io.Writer
	styles styles
}

// NewConsole creates a console writing to out
func NewConsole(out io.Writer, noColor bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, styles: newStyles(ColorEnabled(out, noColor))}
}

// Header describes the run before it starts
type Header struct {
	Repo    string
	SHA     string
	Branch  string
	Level   int
	Profile string
	Rules   string
	OutDir  string
}

// Header prints the run provenance (verbose mode only)
func (c *Console) Header(h Header) {
	c.println(c.styles.Title.Render("Repo Drift Detector"))
	c.printf("  Repository: %s\n", h.Repo)
	c.printf("  SHA: %s\n", h.SHA)
	c.printf("  Branch: %s\n", h.Branch)
	c.printf("  Level: %d (%s)\n", h.Level, drift.LevelName(h.Level))
	c.printf("  Profile: %s\n", h.Profile)
	c.printf("  Rules: %s\n", h.Rules)
	if h.OutDir != "" {
		c.printf("  Output: %s\n", c.styles.Path.Render(h.OutDir))
	} else {
		c.printf("  Output: %s\n", c.styles.Muted.Render("console only (no 70_evidence/ directory)"))
	}
	c.println("")
}

// Summary prints severity counts for a finished report
func (c *Console) Summary(r *drift.Report) {
	counts := r.CountsBySeverity()
	c.println("")
	c.println(c.styles.Title.Render(fmt.Sprintf("Drift Detection Complete (Level %d)", r.Level)))
	for i := len(drift.Severities) - 1; i >= 0; i-- {
		sev := drift.Severities[i]
		label := fmt.Sprintf("%-9s", string(sev)+":")
		count := fmt.Sprintf("%d", counts[sev])
		if counts[sev] > 0 {
			count = c.styles.severity[sev].Render(count)
		}
		c.printf("  %s %s\n", label, count)
	}
	c.printf("  %-9s %d\n", "Total:", len(r.Findings))
}

// Reports prints the paths of written report files
func (c *Console) Reports(paths []string) {
	if len(paths) == 0 {
		return
	}
	c.println("")
	for _, p := range paths {
		c.printf("%s: %s\n", reportLabel(p), c.styles.Path.Render(p))
	}
}

func reportLabel(path string) string {
	switch filepath.Ext(path) {
	case ".md":
		return "Markdown report"
	case ".json":
		return "JSON report"
	case ".sarif":
		return "SARIF report"
	default:
		return "Report"
	}
}

// Note prints an informational line set apart from the summary
func (c *Console) Note(msg string) {
	c.println("")
	c.println(c.styles.Muted.Render("Note: " + msg))
}

// Strict prints the strict-mode failure line
func (c *Console) Strict(critical int) {
	c.println("")
	c.println(c.styles.Failure.Render(StrictMessage(critical)))
}

// StrictMessage is the text shown when strict mode fails a run
func StrictMessage(critical int) string {
	return fmt.Sprintf("STRICT MODE: %d CRITICAL finding(s) - exiting with code 1", critical)
}

// MetaResult prints a META.yaml drift result
func (c *Console) MetaResult(res *metadrift.Result) {
	if !res.HasDrift() {
		c.println(c.styles.Success.Render(fmt.Sprintf("READY: META.yaml drift check PASSED (%s)", res.Project)))
		return
	}
	c.println(c.styles.Title.Render("META.yaml Drift Report"))
	c.printf("\n%s:\n", res.Project)
	for _, line := range res.Lines() {
		c.printf("  - %s\n", line)
	}
	c.printf("\nSUMMARY: %d issue(s)\n", len(res.Issues))
	c.println(c.styles.Failure.Render("READY: META.yaml drift check FAILED"))
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}
