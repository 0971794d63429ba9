// Package tasks implements the tasks that make up feature recipes.
//
// Built-in tasks copy files and run SQL scripts. Every other task name refers
// to a task definition, a composite task that expands into a recipe of
// sub-tasks for the current action.
package tasks

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
)

// Task is a step a recipe can invoke.
type Task interface {
	Name() string
	// Simulate returns the state Execute would produce without side effects.
	Simulate(ctx context.Context, tc *Context, hash domain.StateHash) (domain.StateHash, error)
	// Execute performs the task. Dry runs skip side effects but return the same state.
	Execute(ctx context.Context, tc *Context, hash domain.StateHash) (domain.StateHash, error)
	// Requirements reports unmet preconditions.
	Requirements(tc *Context, sink *execution.RequirementSink)
}

// Registry resolves task names to tasks.
type Registry struct {
	builtins    map[string]Task
	definitions map[string]*domain.TaskDefinition
}

// NewRegistry creates a Registry with the built-in tasks and the given definitions.
func NewRegistry(definitions map[string]*domain.TaskDefinition) *Registry {
	r := &Registry{
		builtins:    make(map[string]Task),
		definitions: definitions,
	}
	r.Register(CopyTask{})
	r.Register(SQLTask{})
	return r
}

// Register adds or replaces a built-in task.
func (r *Registry) Register(t Task) {
	r.builtins[t.Name()] = t
}

// Resolve returns the task called name. Built-ins take precedence over definitions.
func (r *Registry) Resolve(name string) (Task, error) {
	if t, ok := r.builtins[name]; ok {
		return t, nil
	}
	if def, ok := r.definitions[name]; ok {
		return &CompositeTask{def: def}, nil
	}
	return nil, domain.NewFailure(domain.ErrTaskNotFound, "cannot find task %s", name)
}
