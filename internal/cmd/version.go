package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bettyprotocol/betty-drift/internal/ux"
	"github.com/bettyprotocol/betty-drift/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

var versionJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output version information as JSON")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.GetInfo()
	out := cmd.OutOrStdout()

	if versionJSON {
		f, err := ux.NewFormatter("json", &ux.FormatterOptions{Writer: out})
		if err != nil {
			return err
		}
		return f.Format(info)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintln(out, info.String())
		return nil
	}

	fmt.Fprintf(out, "betty-drift %s\n", info.Short())
	return nil
}
