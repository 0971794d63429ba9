package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/dbbm/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run ACTION",
		Short: "Run the recipes of an action on the features of a release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			release, _ := cmd.Flags().GetString("release")
			env, _ := cmd.Flags().GetString("env")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			return c.app.RunAction(cmd.Context(), app.RunOptions{
				CommonOptions: commonOptions(cmd),
				Action:        args[0],
				Release:       release,
				Environment:   env,
				DryRun:        dryRun,
			})
		},
	}

	cmd.Flags().StringP("release", "r", "", "Release whose features run (default is defaultRelease)")
	cmd.Flags().StringP("env", "e", "", "Environment (default is the environment setting)")
	cmd.Flags().BoolP("dry-run", "n", false, "Log what would run without executing it")

	return cmd
}
