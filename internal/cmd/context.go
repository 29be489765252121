package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bettyprotocol/betty-drift/internal/log"
)

// CommandContext holds the persistent flags every command reads and the
// logger installed by the root command. Commands build it in RunE.
type CommandContext struct {
	Verbose bool
	NoColor bool
	Logger  *log.Logger
}

// NewCommandContext extracts command context from cobra.Command flags.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Verbose: verbose,
		NoColor: noColor,
		Logger:  log.DefaultLogger(),
	}, nil
}
