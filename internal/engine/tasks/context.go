package tasks

import (
	"context"
	"path/filepath"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/dbbm/internal/engine/execution"
)

// Env is shared by every task of one invocation.
type Env struct {
	Action       string
	ProjectRoot  string
	Environment  domain.Environment
	EnvVariables map[string]string
	Registry     *Registry
	Logger       ports.Logger
	Backend      ports.SQLBackend
	Files        ports.FileLister
	Hasher       ports.FileHasher
	DryRun       bool
}

// Context is the execution context of one task invocation.
type Context struct {
	Env      *Env
	Feature  *domain.Feature
	Config   domain.TaskConfig
	Replacer *Replacer
}

// NewContext creates the context of a task invoked directly by a feature recipe.
func NewContext(env *Env, feature *domain.Feature, cfg domain.TaskConfig) *Context {
	return &Context{
		Env:      env,
		Feature:  feature,
		Config:   cfg,
		Replacer: ForFeature(env.ProjectRoot, env.EnvVariables, feature, cfg),
	}
}

// Sub creates the context of a sub-task invoked by the composite task def.
func (c *Context) Sub(def *domain.TaskDefinition, cfg domain.TaskConfig) *Context {
	return &Context{
		Env:      c.Env,
		Feature:  c.Feature,
		Config:   cfg,
		Replacer: c.Replacer.WithSubTask(def, cfg),
	}
}

// Param returns the expanded value of a parameter of this invocation.
func (c *Context) Param(name string) (string, bool) {
	raw, ok := c.Config.Parameters[name]
	if !ok {
		return "", false
	}
	return c.Replacer.Replace(raw), true
}

// ParamOr returns the expanded parameter or def when it is not set.
func (c *Context) ParamOr(name, def string) string {
	if v, ok := c.Param(name); ok {
		return v
	}
	return def
}

// ParamWith expands a parameter with extra variables in scope.
func (c *Context) ParamWith(name string, extra map[string]string) (string, bool) {
	raw, ok := c.Config.Parameters[name]
	if !ok {
		return "", false
	}
	return c.Replacer.With(extra).Replace(raw), true
}

// FeaturePath resolves p against the feature directory unless it is absolute.
func (c *Context) FeaturePath(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Feature.BaseDirectory, p)
}

// ProjectPath resolves p against the project root unless it is absolute.
func (c *Context) ProjectPath(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Env.ProjectRoot, p)
}

// Log returns the logger indented for the step running in ctx.
func (c *Context) Log(ctx context.Context) ports.Logger {
	return execution.Logger(ctx, c.Env.Logger)
}
