package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/dbbm/internal/app"
)

func (c *CLI) newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Restore the closest release backups and deploy up to a release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			release, _ := cmd.Flags().GetString("release")
			env, _ := cmd.Flags().GetString("env")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			resume, _ := cmd.Flags().GetBool("resume")
			noCache, _ := cmd.Flags().GetBool("no-cache")

			return c.app.Deploy(cmd.Context(), app.DeployOptions{
				CommonOptions: commonOptions(cmd),
				Release:       release,
				Environment:   env,
				DryRun:        dryRun,
				Resume:        resume,
				NoCache:       noCache,
			})
		},
	}

	cmd.Flags().StringP("release", "r", "", "Release to deploy (default is defaultRelease)")
	cmd.Flags().StringP("env", "e", "", "Environment to deploy (default is the environment setting)")
	cmd.Flags().BoolP("dry-run", "n", false, "Log what would run without touching the databases")
	cmd.Flags().BoolP("resume", "s", false, "Continue after the last step of a failed deploy")
	cmd.Flags().Bool("no-cache", false, "Neither read nor populate the state cache")

	return cmd
}
