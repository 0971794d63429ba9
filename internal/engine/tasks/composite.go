package tasks

import (
	"context"
	"fmt"
	"os"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
)

// CompositeTask runs the recipe a task definition declares for the current action.
type CompositeTask struct {
	def *domain.TaskDefinition
}

// Name implements Task.
func (t *CompositeTask) Name() string {
	return t.def.Name
}

// Simulate implements Task.
func (t *CompositeTask) Simulate(ctx context.Context, tc *Context, hash domain.StateHash) (domain.StateHash, error) {
	return t.run(ctx, tc, hash, false)
}

// Execute implements Task.
func (t *CompositeTask) Execute(ctx context.Context, tc *Context, hash domain.StateHash) (domain.StateHash, error) {
	return t.run(ctx, tc, hash, true)
}

func (t *CompositeTask) run(ctx context.Context, tc *Context, hash domain.StateHash, execute bool) (domain.StateHash, error) {
	recipe, ok := t.def.Recipe(tc.Env.Action)
	if !ok {
		return hash, nil
	}

	if execute {
		tc.Log(ctx).Info(fmt.Sprintf("running task '%s'", t.def.Name))
	}

	subCtx := execution.Nested(ctx)
	for _, cfg := range recipe {
		task, err := tc.Env.Registry.Resolve(cfg.Name)
		if err != nil {
			return hash, err
		}

		sub := tc.Sub(t.def, cfg)
		if execute {
			tc.Log(subCtx).Info(fmt.Sprintf("running sub-task '%s'", task.Name()))
			hash, err = task.Execute(execution.Nested(subCtx), sub, hash)
		} else {
			hash, err = task.Simulate(execution.Nested(subCtx), sub, hash)
		}
		if err != nil {
			return hash, err
		}
	}
	return hash, nil
}

// Requirements implements Task. Requirements of composite sub-tasks are checked as well.
func (t *CompositeTask) Requirements(tc *Context, sink *execution.RequirementSink) {
	group := tc.Feature.Name
	scope := tc.Replacer.With(t.def.Define)

	for _, req := range t.def.Require {
		for _, arg := range req.Args {
			if msg, ok := checkRequirement(tc, req.Type, scope.Replace(arg)); !ok {
				sink.Fail(group, "%s", msg)
			}
		}
	}

	recipe, ok := t.def.Recipe(tc.Env.Action)
	if !ok {
		return
	}
	for _, cfg := range recipe {
		task, err := tc.Env.Registry.Resolve(cfg.Name)
		if err != nil {
			sink.Fail(group, "cannot find task %s", cfg.Name)
			continue
		}
		task.Requirements(tc.Sub(t.def, cfg), sink)
	}
}

func checkRequirement(tc *Context, kind, arg string) (string, bool) {
	switch kind {
	case "exists":
		if _, err := os.Stat(tc.ProjectPath(arg)); err != nil {
			return fmt.Sprintf("path %s does not exist", arg), false
		}
	case "file":
		info, err := os.Stat(tc.ProjectPath(arg))
		if err != nil || !info.Mode().IsRegular() {
			return fmt.Sprintf("file %s does not exist", arg), false
		}
	case "dir":
		info, err := os.Stat(tc.ProjectPath(arg))
		if err != nil || !info.IsDir() {
			return fmt.Sprintf("directory %s does not exist", arg), false
		}
	case "env":
		if tc.Env.EnvVariables[arg] == "" {
			return fmt.Sprintf("environment variable %s is not set", arg), false
		}
	default:
		return fmt.Sprintf("unknown requirement type %s", kind), false
	}
	return "", true
}
