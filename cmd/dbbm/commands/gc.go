package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/dbbm/internal/app"
)

func (c *CLI) newGCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "garbage-collect",
		Aliases: []string{"gc"},
		Short:   "Trim the state cache to its configured size",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return c.app.GarbageCollect(cmd.Context(), app.GCOptions{
				CommonOptions: commonOptions(cmd),
				DryRun:        dryRun,
			})
		},
	}

	cmd.Flags().BoolP("dry-run", "n", false, "Report what would be removed")

	return cmd
}
