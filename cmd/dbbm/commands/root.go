// Package commands implements the CLI commands for dbbm.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/dbbm/internal/app"
	"go.trai.ch/dbbm/internal/build"
	"go.trai.ch/dbbm/internal/core/ports"
)

// CLI represents the command line interface for dbbm.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Deploy(ctx context.Context, opts app.DeployOptions) error
	RunAction(ctx context.Context, opts app.RunOptions) error
	GarbageCollect(ctx context.Context, opts app.GCOptions) error
}

// jsonSwitcher is implemented by loggers that can emit JSON records.
type jsonSwitcher interface {
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app and logger.
func New(a Application, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "dbbm",
		Short:         "Incremental database deploys from release backups",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().String("config", "", "User settings file (default .dbbm.user.yaml in the project or home directory)")
	rootCmd.PersistentFlags().Bool("json", false, "Log JSON records instead of text")
	rootCmd.PersistentFlags().Bool("timings", false, "Print the duration of every executed step")

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		jsonMode, _ := cmd.Flags().GetBool("json")
		if s, ok := c.logger.(jsonSwitcher); ok && jsonMode {
			s.SetJSON(true)
		}
	}

	rootCmd.AddCommand(c.newDeployCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newGCCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func commonOptions(cmd *cobra.Command) app.CommonOptions {
	configPath, _ := cmd.Flags().GetString("config")
	timings, _ := cmd.Flags().GetBool("timings")
	return app.CommonOptions{ConfigPath: configPath, Timings: timings}
}
