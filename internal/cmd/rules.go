package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	drifterrors "github.com/bettyprotocol/betty-drift/internal/errors"
	"github.com/bettyprotocol/betty-drift/internal/log"
	"github.com/bettyprotocol/betty-drift/internal/rules"
	"github.com/bettyprotocol/betty-drift/internal/ux"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect drift rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the rules a scan would use, as YAML",
	Long: `Resolve drift rules the same way detect does and print the result.

Resolution order: --rules, then <repo>/30_config/drift_rules.yaml, then the
built-in universal defaults. An explicit --rules file that cannot be loaded is
an error here, while detect falls back silently.`,
	Args: cobra.NoArgs,
	RunE: runRulesShowCmd,
}

var (
	rulesRepo string
	rulesPath string
)

func init() {
	rulesShowCmd.Flags().StringVar(&rulesRepo, "repo", "", "repository root (default: current directory)")
	rulesShowCmd.Flags().StringVar(&rulesPath, "rules", "", "path to a drift_rules.yaml to load")

	rulesCmd.AddCommand(rulesShowCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesShowCmd(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	return runRulesShow(rulesRepo, rulesPath, cmd.OutOrStdout(), cc.Logger)
}

func runRulesShow(repo, explicit string, out io.Writer, logger *log.Logger) error {
	root, err := resolveRepo(repo)
	if err != nil {
		return err
	}

	var resolved *rules.Resolved
	if explicit != "" {
		r, err := rules.Load(explicit, logger)
		if err != nil {
			return drifterrors.NewRulesUnreadableError(explicit, err)
		}
		resolved = &rules.Resolved{Rules: r, Source: rules.SourceExplicit, Path: explicit}
	} else {
		resolved = rules.Resolve("", root, logger)
	}

	data, err := rules.Marshal(resolved.Rules)
	if err != nil {
		return ux.FormatError(err, "encode rules")
	}

	if _, err := fmt.Fprintf(out, "# source: %s\n", rulesLabel(resolved)); err != nil {
		return err
	}
	f, err := ux.NewFormatter("yaml", &ux.FormatterOptions{Writer: out})
	if err != nil {
		return err
	}
	return f.Format(data)
}
