package commands

import "github.com/spf13/cobra"

func (c *CLI) newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the workspace dependency graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Graph(cmd.Context(), dirFlag(cmd), cmd.OutOrStdout())
		},
	}
}

func (c *CLI) newOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order [package]",
		Short: "Print the build order of the workspace, or the dependencies of a package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return c.app.Order(cmd.Context(), dirFlag(cmd), name, cmd.OutOrStdout())
		},
	}
}

func (c *CLI) newHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the content hash of every package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			packages, _ := cmd.Flags().GetStringArray("package")
			return c.app.Hash(cmd.Context(), dirFlag(cmd), packages, cmd.OutOrStdout())
		},
	}
	addPackageFlag(cmd, "Only print the hash of `NAME` (repeatable)")
	return cmd
}
