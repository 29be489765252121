package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bettyprotocol/betty-drift/internal/exitcode"
	"github.com/bettyprotocol/betty-drift/internal/metadrift"
	"github.com/bettyprotocol/betty-drift/internal/ux"
)

var metaCmd = &cobra.Command{
	Use:   "meta [DIR]",
	Short: "Check META.yaml against the project it describes",
	Long: `Compare a project's META.yaml with the files and folders actually present.

Reported issues:
  MISSING  META.yaml or project.last_reviewed is absent
  INVALID  project.last_reviewed is not a YYYY-MM-DD date
  STALE    project.last_reviewed is more than 30 days old
  DRIFT    folders or key files differ from what META.yaml lists

Exit codes:
  0 - META.yaml matches the project
  1 - Drift detected (details printed)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMetaCmd,
}

var metaJSON bool

func init() {
	metaCmd.Flags().BoolVar(&metaJSON, "json", false, "output the result as JSON")

	rootCmd.AddCommand(metaCmd)
}

func runMetaCmd(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	return runMeta(cmd.Context(), dir, metaJSON, cc.NoColor, cmd.OutOrStdout(), time.Now())
}

func runMeta(_ context.Context, dir string, asJSON, noColor bool, out io.Writer, now time.Time) error {
	root, err := resolveRepo(dir)
	if err != nil {
		return err
	}

	res, err := metadrift.Check(root, now)
	if err != nil {
		return err
	}

	if asJSON {
		f, err := ux.NewFormatter("json", &ux.FormatterOptions{Writer: out})
		if err != nil {
			return err
		}
		if err := f.Format(res); err != nil {
			return ux.FormatError(err, "print META.yaml result")
		}
	} else {
		ux.NewConsole(out, noColor).MetaResult(res)
	}

	if res.HasDrift() {
		return exitcode.NewDriftFound("META.yaml drift check FAILED")
	}
	return nil
}
