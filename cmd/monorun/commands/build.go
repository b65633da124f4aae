package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/monorun/internal/app"
	"go.trai.ch/zerr"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := c.scopedCmd(app.ScopeBuild, "build [flags] [-- command...]",
		"Build the current package and its dependencies")
	addPackageFlag(cmd, "Build `NAME` instead of the current package (repeatable)")
	return cmd
}

func (c *CLI) newDepsCmd() *cobra.Command {
	cmd := c.scopedCmd(app.ScopeDeps, "deps [flags] [-- command...]",
		"Build the dependencies of the current package")
	addPackageFlag(cmd, "Build the dependencies of `NAME` instead of the current package (repeatable)")
	return cmd
}

func (c *CLI) newAllCmd() *cobra.Command {
	return c.scopedCmd(app.ScopeAll, "all [flags] [-- command...]", "Build every package of the workspace")
}

// scopedCmd builds one of the build commands. Arguments after "--" are the
// command run in place of the build inside an orchestrated build script.
func (c *CLI) scopedCmd(scope app.Scope, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  passthroughArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			var packages []string
			if cmd.Flags().Lookup("package") != nil {
				packages, _ = cmd.Flags().GetStringArray("package")
			}

			return c.app.Build(cmd.Context(), app.BuildOptions{
				Dir:         dirFlag(cmd),
				Scope:       scope,
				Packages:    packages,
				Concurrency: concurrency,
				Passthrough: passthrough(cmd, args),
			})
		},
	}
	cmd.Flags().Int("concurrency", 0, "Number of packages built at once (default from monorun.toml, else 1)")
	return cmd
}

func addPackageFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringArrayP("package", "p", nil, usage)
}

// passthroughArgs accepts arguments only after "--".
func passthroughArgs(cmd *cobra.Command, args []string) error {
	dash := cmd.ArgsLenAtDash()
	if (dash < 0 && len(args) > 0) || dash > 0 {
		return zerr.With(zerr.New("unexpected arguments, pass the command after --"), "args", args)
	}
	return nil
}

func passthrough(cmd *cobra.Command, args []string) []string {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		return args[dash:]
	}
	return nil
}
