package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dbbm/cmd/dbbm/commands"
	"go.trai.ch/dbbm/internal/app"
	"go.trai.ch/dbbm/internal/build"
	"go.trai.ch/dbbm/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type mockApp struct {
	deployFunc func(ctx context.Context, opts app.DeployOptions) error
	runFunc    func(ctx context.Context, opts app.RunOptions) error
	gcFunc     func(ctx context.Context, opts app.GCOptions) error
}

func (m *mockApp) Deploy(ctx context.Context, opts app.DeployOptions) error {
	if m.deployFunc != nil {
		return m.deployFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) RunAction(ctx context.Context, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) GarbageCollect(ctx context.Context, opts app.GCOptions) error {
	if m.gcFunc != nil {
		return m.gcFunc(ctx, opts)
	}
	return nil
}

type jsonLogger struct {
	*mocks.MockLogger
	json bool
}

func (l *jsonLogger) SetJSON(enable bool) { l.json = enable }

func newCLI(t *testing.T, a commands.Application) *commands.CLI {
	t.Helper()
	cli := commands.New(a, mocks.NewMockLogger(gomock.NewController(t)))
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	return cli
}

func TestCommands_Deploy(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.DeployOptions
		called := false

		mock := &mockApp{
			deployFunc: func(_ context.Context, opts app.DeployOptions) error {
				captured = opts
				called = true
				return nil
			},
		}

		cli := newCLI(t, mock)
		cli.SetArgs([]string{
			"deploy", "-r", "R2", "-e", "dev", "-n", "-s", "--no-cache",
			"--config", "user.yaml", "--timings",
		})

		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, called)
		assert.Equal(t, app.DeployOptions{
			CommonOptions: app.CommonOptions{ConfigPath: "user.yaml", Timings: true},
			Release:       "R2",
			Environment:   "dev",
			DryRun:        true,
			Resume:        true,
			NoCache:       true,
		}, captured)
	})

	t.Run("defaults", func(t *testing.T) {
		var captured app.DeployOptions
		mock := &mockApp{
			deployFunc: func(_ context.Context, opts app.DeployOptions) error {
				captured = opts
				return nil
			},
		}

		cli := newCLI(t, mock)
		cli.SetArgs([]string{"deploy"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, app.DeployOptions{}, captured)
	})

	t.Run("returns error on deploy failure", func(t *testing.T) {
		mock := &mockApp{
			deployFunc: func(context.Context, app.DeployOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := newCLI(t, mock)
		cli.SetArgs([]string{"deploy"})

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("rejects arguments", func(t *testing.T) {
		cli := newCLI(t, &mockApp{})
		cli.SetArgs([]string{"deploy", "R2"})

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := newCLI(t, mock)
		cli.SetArgs([]string{"run", "export", "--release", "R1", "--env", "prod", "--dry-run"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, app.RunOptions{
			Action:      "export",
			Release:     "R1",
			Environment: "prod",
			DryRun:      true,
		}, captured)
	})

	t.Run("requires an action", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(context.Context, app.RunOptions) error {
				panic("should not be called")
			},
		}

		cli := newCLI(t, mock)
		cli.SetArgs([]string{"run"})

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_GarbageCollect(t *testing.T) {
	for _, name := range []string{"garbage-collect", "gc"} {
		t.Run(name, func(t *testing.T) {
			var captured app.GCOptions
			called := false
			mock := &mockApp{
				gcFunc: func(_ context.Context, opts app.GCOptions) error {
					captured = opts
					called = true
					return nil
				},
			}

			cli := newCLI(t, mock)
			cli.SetArgs([]string{name, "-n"})

			require.NoError(t, cli.Execute(context.Background()))
			assert.True(t, called)
			assert.True(t, captured.DryRun)
		})
	}
}

func TestCommands_JSONFlag(t *testing.T) {
	log := &jsonLogger{MockLogger: mocks.NewMockLogger(gomock.NewController(t))}

	cli := commands.New(&mockApp{}, log)
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"gc", "--json"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, log.json)
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{}, nil)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "dbbm version "+build.Version)
	assert.Contains(t, buf.String(), build.Commit)
}
