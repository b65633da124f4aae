package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/monorun/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the build cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stale, _ := cmd.Flags().GetBool("stale")
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Dir:   dirFlag(cmd),
				Stale: stale,
			})
		},
	}
	cmd.Flags().Bool("stale", false, "Only remove entries that no longer match the current sources")
	return cmd
}
