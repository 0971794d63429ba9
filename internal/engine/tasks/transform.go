package tasks

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
)

var _ execution.Transform = (*Transform)(nil)

// Transform adapts a task invocation to a pipeline step.
type Transform struct {
	task Task
	tc   *Context
}

// NewTransform wraps task running in tc.
func NewTransform(task Task, tc *Context) *Transform {
	return &Transform{task: task, tc: tc}
}

// Name implements execution.Transform.
func (t *Transform) Name() string {
	return t.tc.Feature.Name + "/" + t.task.Name()
}

// Simulate implements execution.Transform.
func (t *Transform) Simulate(ctx context.Context, hash domain.StateHash) (domain.StateHash, error) {
	return t.task.Simulate(ctx, t.tc, hash)
}

// Run implements execution.Transform.
func (t *Transform) Run(ctx context.Context, hash domain.StateHash) (domain.StateHash, error) {
	return t.task.Execute(ctx, t.tc, hash)
}

// Requirements implements execution.Transform.
func (t *Transform) Requirements(sink *execution.RequirementSink) {
	t.task.Requirements(t.tc, sink)
}
