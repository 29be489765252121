package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bettyprotocol/betty-drift/internal/config"
	"github.com/bettyprotocol/betty-drift/internal/drift"
	drifterrors "github.com/bettyprotocol/betty-drift/internal/errors"
	"github.com/bettyprotocol/betty-drift/internal/exec"
	"github.com/bettyprotocol/betty-drift/internal/exitcode"
	"github.com/bettyprotocol/betty-drift/internal/log"
	"github.com/bettyprotocol/betty-drift/internal/metrics"
	"github.com/bettyprotocol/betty-drift/internal/report"
	"github.com/bettyprotocol/betty-drift/internal/rules"
	"github.com/bettyprotocol/betty-drift/internal/ux"
	"github.com/bettyprotocol/betty-drift/internal/version"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Scan a repository for documentation drift",
	Long: `Scan a repository for documentation drift and write a report.

Levels:
  1  Fast inventory: canonical scope, top-level layout, validator registry,
     schema inventory, stale paths, delegated contract checks
  2  Canonical consistency: validator inventories across docs, internal links,
     META.yaml, generated docs
  3  Deep dive: orphaned markdown and misplaced artifacts

Reports go to <repo>/70_evidence/drift/<repo>/ when 70_evidence/ exists, or to
--out-dir. Without either, only the console summary is printed.
Findings alone never fail a run; --strict fails it on CRITICAL findings.`,
	Example: `  betty-drift detect --level 1 --verbose
  betty-drift detect --level 2 --format both
  betty-drift detect --level 3 --format all --out-dir /tmp/drift
  betty-drift detect --strict --metrics-file /var/lib/node_exporter/betty_drift.prom`,
	Args: cobra.NoArgs,
	RunE: runDetectCmd,
}

type detectOptions struct {
	Repo        string
	Level       int
	Format      string
	Rules       string
	OutDir      string
	Strict      bool
	MetricsFile string
	Python      string
	Verbose     bool
	NoColor     bool
}

var detectFlags detectOptions

func init() {
	detectCmd.Flags().StringVar(&detectFlags.Repo, "repo", "", "repository root (default: current directory)")
	detectCmd.Flags().IntVar(&detectFlags.Level, "level", config.DefaultLevel, "detection level: 1=fast, 2=consistency, 3=deep")
	detectCmd.Flags().StringVar(&detectFlags.Format, "format", string(report.FormatMarkdown), "report format: "+report.ValidFormats)
	detectCmd.Flags().StringVar(&detectFlags.Rules, "rules", "", "path to drift_rules.yaml (default: 30_config/drift_rules.yaml)")
	detectCmd.Flags().StringVar(&detectFlags.OutDir, "out-dir", "", "output directory (default: 70_evidence/drift/<repo>/)")
	detectCmd.Flags().BoolVar(&detectFlags.Strict, "strict", false, "exit 1 if any CRITICAL findings")
	detectCmd.Flags().StringVar(&detectFlags.MetricsFile, "metrics-file", "", "write run metrics in Prometheus textfile format")

	detectCmd.Long += "\n\n" + exitCodeHelp()
	rootCmd.AddCommand(detectCmd)
}

func exitCodeHelp() string {
	var b strings.Builder
	b.WriteString("Exit codes:")
	for _, code := range []int{exitcode.Success, exitcode.DriftFound, exitcode.ConfigError, exitcode.GeneralError, exitcode.Interrupted} {
		fmt.Fprintf(&b, "\n  %d - %s", code, exitcode.GetExitCodeDescription(code))
	}
	return b.String()
}

func runDetectCmd(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cc.Logger)
	if err != nil {
		return err
	}

	opts := detectFlags
	opts.Verbose = cc.Verbose
	opts.NoColor = cc.NoColor
	opts.Python = cfg.Python
	if !cmd.Flags().Changed("level") {
		opts.Level = cfg.Level
	}
	if !cmd.Flags().Changed("rules") && cfg.Rules != "" {
		opts.Rules = cfg.Rules
	}
	if !cmd.Flags().Changed("out-dir") && cfg.OutDir != "" {
		opts.OutDir = cfg.OutDir
	}

	return runDetect(cmd.Context(), opts, cmd.OutOrStdout(), cc.Logger)
}

// runDetect performs one scan and writes its reports. It returns a
// DriftFoundError when strict mode fails the run.
func runDetect(ctx context.Context, opts detectOptions, out io.Writer, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = log.Discard()
	}

	if opts.Level < 1 || opts.Level > 3 {
		return drifterrors.NewInvalidFlagError("level", opts.Level, "1, 2, 3")
	}
	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return drifterrors.NewInvalidFlagError("format", opts.Format, report.ValidFormats)
	}

	root, err := resolveRepo(opts.Repo)
	if err != nil {
		return err
	}
	repoName := filepath.Base(root)
	logger = logger.With("repo", repoName)

	registry, m := metrics.NewRegistry()

	resolved := rules.Resolve(opts.Rules, root, logger)

	scan := drift.NewScan(root, resolved.Rules, logger)
	scan.Python = exec.FindPython(opts.Python)
	scan.Metrics = m

	outDir := defaultOutDir(root, opts.OutDir)
	console := ux.NewConsole(out, opts.NoColor)

	if opts.Verbose {
		gitCtx := scan.Git.Context(ctx)
		console.Header(ux.Header{
			Repo:    repoName,
			SHA:     gitCtx.SHA,
			Branch:  gitCtx.Branch,
			Level:   opts.Level,
			Profile: scan.Profile.Summary(),
			Rules:   rulesLabel(resolved),
			OutDir:  outDir,
		})
	}

	rep, err := drift.Detect(ctx, scan, drift.Options{
		Level:           opts.Level,
		DetectorVersion: version.GetInfo().Version,
	})
	if err != nil {
		return err
	}

	console.Summary(rep)

	if outDir != "" {
		paths, err := report.NewWriter(outDir, m).Write(rep, format)
		console.Reports(paths)
		if err != nil {
			return err
		}
	} else if format != report.FormatMarkdown {
		console.Note("No 70_evidence/ directory found; skipping file output.")
	}

	if opts.MetricsFile != "" {
		if err := metrics.WriteTextfile(opts.MetricsFile, registry); err != nil {
			return drifterrors.Wrap(drifterrors.ErrCodeMetricsWrite, "failed to write metrics", err).
				WithSuggestion("Check the --metrics-file path")
		}
		logger.Debug("wrote metrics textfile", "path", opts.MetricsFile)
	}

	if opts.Strict {
		if critical := rep.CountsBySeverity()[drift.SeverityCritical]; critical > 0 {
			console.Strict(critical)
			return exitcode.NewDriftFound(ux.StrictMessage(critical))
		}
	}
	return nil
}

// resolveRepo returns the absolute repository root, defaulting to the
// working directory.
func resolveRepo(repo string) (string, error) {
	if repo == "" {
		repo = "."
	}
	abs, err := filepath.Abs(repo)
	if err != nil {
		return "", drifterrors.NewRepoNotFoundError(repo)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", drifterrors.NewRepoNotFoundError(abs)
	}
	return abs, nil
}

// defaultOutDir returns where reports are written, or "" for console-only
// output.
func defaultOutDir(root, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if info, err := os.Stat(filepath.Join(root, "70_evidence")); err == nil && info.IsDir() {
		return filepath.Join(root, "70_evidence", "drift", filepath.Base(root))
	}
	return ""
}

func rulesLabel(r *rules.Resolved) string {
	if r.Path == "" {
		return string(r.Source)
	}
	return fmt.Sprintf("%s (%s)", r.Path, r.Source)
}
