package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/bettyprotocol/betty-drift/internal/config"
	"github.com/bettyprotocol/betty-drift/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "betty-drift",
	Short: "Tiered documentation drift detector for Betty Protocol repositories",
	Long: `betty-drift inspects a repository that follows the Betty Protocol and reports
places where documentation no longer matches reality: validator inventories that
disagree, broken internal links, stale path references, out-of-date generated
docs, orphaned files and misplaced artifacts.

Level 1 runs fast inventory checks, level 2 adds cross-document consistency and
level 3 adds archive candidates. Findings are written as markdown, JSON or SARIF.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, so an interrupt cancels
// the scan between checks and stops running subprocesses.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show per-check progress and the run header")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable coloured terminal output")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	format := log.ParseFormat(os.Getenv(config.EnvLogFormat))
	log.SetDefaultLogger(log.New(log.ForVerbosity(verbose).WithFormat(format)))
	return nil
}
