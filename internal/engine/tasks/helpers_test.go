package tasks_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/dbbm/internal/adapters/fs"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
	"go.trai.ch/dbbm/internal/engine/statehash"
	"go.trai.ch/dbbm/internal/engine/tasks"
)

// recorder is a ports.Logger keeping every line.
type recorder struct {
	lines []string
}

func (r *recorder) Info(msg string) { r.lines = append(r.lines, msg) }
func (r *recorder) Warn(msg string) { r.lines = append(r.lines, "WARN "+msg) }
func (r *recorder) Error(err error) { r.lines = append(r.lines, "ERROR "+err.Error()) }

// echoTask records the expanded value of its "msg" parameter.
type echoTask struct {
	seen *[]string
}

func (echoTask) Name() string { return "echo" }

func (t echoTask) Simulate(_ context.Context, tc *tasks.Context, hash domain.StateHash) (domain.StateHash, error) {
	msg, _ := tc.Param("msg")
	return statehash.Strings(hash, msg), nil
}

func (t echoTask) Execute(ctx context.Context, tc *tasks.Context, hash domain.StateHash) (domain.StateHash, error) {
	msg, _ := tc.Param("msg")
	*t.seen = append(*t.seen, msg)
	tc.Log(ctx).Info("echo " + msg)
	return t.Simulate(ctx, tc, hash)
}

func (echoTask) Requirements(*tasks.Context, *execution.RequirementSink) {}

type fixture struct {
	root    string
	feature *domain.Feature
	env     *tasks.Env
	log     *recorder
}

func newFixture(t *testing.T, defs map[string]*domain.TaskDefinition) *fixture {
	t.Helper()
	root := t.TempDir()
	base := filepath.Join(root, "features", "F1")
	require.NoError(t, os.MkdirAll(base, 0o750))

	log := &recorder{}
	return &fixture{
		root:    root,
		feature: &domain.Feature{Name: "F1", BaseDirectory: base},
		log:     log,
		env: &tasks.Env{
			Action:       "deploy",
			ProjectRoot:  root,
			Environment:  domain.Environment{Name: "dev", Include: []string{"dev"}},
			EnvVariables: map[string]string{"tools": "/opt/tools"},
			Registry:     tasks.NewRegistry(defs),
			Logger:       log,
			Files:        fs.NewWalker(),
			Hasher:       fs.NewHasher(),
		},
	}
}

func (f *fixture) context(name string, params map[string]string) *tasks.Context {
	return tasks.NewContext(f.env, f.feature, domain.TaskConfig{Name: name, Parameters: params})
}

func (f *fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.feature.BaseDirectory, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
