package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/monorun/internal/build"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		// The version does not depend on the log format.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "monorun version %s (commit %s, built %s)\n",
				build.Version, build.Commit, build.Date)
		},
	}
}
