// Package main is the entry point for dbbm.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/dbbm/cmd/dbbm/commands"
	"go.trai.ch/dbbm/internal/app"
	"go.trai.ch/dbbm/internal/core/domain"
	_ "go.trai.ch/dbbm/internal/wiring"
)

const (
	exitSoftFailure = 1
	exitUnexpected  = 2
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) (code int) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(stderr, "panic: %v\n\n%s", r, debug.Stack())
			code = exitUnexpected
		}
	}()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitUnexpected
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	cli := commands.New(components.App, components.Logger)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		if domain.IsSoftFailure(err) {
			components.Logger.Error(err)
			return exitSoftFailure
		}
		_, _ = fmt.Fprintln(stderr, "An unexpected error occurred.")
		components.Logger.Error(err)
		return exitUnexpected
	}
	return 0
}
