// Package app implements the application layer for dbbm.
package app

import (
	"context"
	"fmt"

	"go.trai.ch/dbbm/internal/adapters/resume"    //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/dbbm/internal/engine/execution"
	"go.trai.ch/dbbm/internal/engine/planner"
	"go.trai.ch/dbbm/internal/engine/tasks"
	"go.trai.ch/zerr"
)

// CacheOpener opens the cache manager described by the user settings.
type CacheOpener interface {
	Open(settings domain.CacheSettings, backend ports.SQLBackend) ports.CacheManager
}

// BackendOpener opens the SQL backend described by the user settings.
type BackendOpener interface {
	Open(settings *domain.Settings) ports.SQLBackend
}

// Prompter asks the user for secrets.
type Prompter interface {
	Interactive() bool
	PromptPassword(prompt string) (string, error)
}

// App represents the main application logic.
type App struct {
	configLoader   ports.ConfigLoader
	settingsLoader ports.SettingsLoader
	logger         ports.Logger
	tracer         ports.Tracer
	renderer       ports.Renderer
	files          ports.FileLister
	hasher         ports.FileHasher
	planner        *planner.Planner
	caches         CacheOpener
	backends       BackendOpener
	prompter       Prompter
	workDir        string
}

// Dependencies lists the collaborators of an App.
type Dependencies struct {
	ConfigLoader   ports.ConfigLoader
	SettingsLoader ports.SettingsLoader
	Logger         ports.Logger
	Tracer         ports.Tracer
	Renderer       ports.Renderer
	Files          ports.FileLister
	Hasher         ports.FileHasher
	Planner        *planner.Planner
	Caches         CacheOpener
	Backends       BackendOpener
	Prompter       Prompter
}

// New creates a new App instance.
func New(deps Dependencies) *App {
	return &App{
		configLoader:   deps.ConfigLoader,
		settingsLoader: deps.SettingsLoader,
		logger:         deps.Logger,
		tracer:         deps.Tracer,
		renderer:       deps.Renderer,
		files:          deps.Files,
		hasher:         deps.Hasher,
		planner:        deps.Planner,
		caches:         deps.Caches,
		backends:       deps.Backends,
		prompter:       deps.Prompter,
		workDir:        ".",
	}
}

// WithWorkDir sets the directory the project file is searched from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// CommonOptions are shared by every command working on a project.
type CommonOptions struct {
	// ConfigPath overrides the user settings search.
	ConfigPath string
	// Timings prints the duration of every executed step.
	Timings bool
}

// DeployOptions configuration for the Deploy method.
type DeployOptions struct {
	CommonOptions
	Release     string
	Environment string
	DryRun      bool
	Resume      bool
	NoCache     bool
}

// RunOptions configuration for the RunAction method.
type RunOptions struct {
	CommonOptions
	Action      string
	Release     string
	Environment string
	DryRun      bool
}

// GCOptions configuration for the GarbageCollect method.
type GCOptions struct {
	CommonOptions
	DryRun bool
}

// session bundles everything loaded before a command runs.
type session struct {
	project  *domain.Project
	settings *domain.Settings
	backend  ports.SQLBackend
}

// open loads the project and user settings. When connect is set the user may be
// asked for the server password.
func (a *App) open(opts CommonOptions, connect bool) (*session, error) {
	project, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	settings, err := a.settingsLoader.LoadSettings(project.Root, opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load user settings")
	}

	if connect {
		if err := a.promptPassword(settings); err != nil {
			return nil, err
		}
	}

	return &session{
		project:  project,
		settings: settings,
		backend:  a.backends.Open(settings),
	}, nil
}

func (a *App) promptPassword(settings *domain.Settings) error {
	conn := &settings.Connection
	if conn.User == "" || conn.Password != "" || a.prompter == nil || !a.prompter.Interactive() {
		return nil
	}

	pw, err := a.prompter.PromptPassword(fmt.Sprintf("Password for %s: ", conn.User))
	if err != nil {
		return err
	}
	conn.Password = pw
	return nil
}

func (s *session) release(name string) (domain.Release, error) {
	if name == "" {
		name = s.project.Releases.Default
	}
	rel, ok := s.project.Releases.Find(name)
	if !ok {
		return domain.Release{}, domain.NewFailure(domain.ErrReleaseNotFound, "cannot find release '%s'", name)
	}
	return rel, nil
}

func (s *session) environment(name string) (domain.Environment, error) {
	if name == "" {
		name = s.settings.Environment
	}
	if name == "" {
		return domain.Environment{}, nil
	}
	env, ok := s.project.Environments[name]
	if !ok {
		return domain.Environment{}, domain.NewFailure(domain.ErrEnvironmentNotFound, "cannot find environment '%s'", name)
	}
	return env, nil
}

func (a *App) taskEnv(s *session, action string, env domain.Environment, dryRun bool) *tasks.Env {
	return &tasks.Env{
		Action:       action,
		ProjectRoot:  s.project.Root,
		Environment:  env,
		EnvVariables: s.settings.EnvVariables,
		Registry:     tasks.NewRegistry(s.project.Tasks),
		Logger:       a.logger,
		Backend:      s.backend,
		Files:        a.files,
		Hasher:       a.hasher,
		DryRun:       dryRun,
	}
}

func (a *App) restorer(s *session, dryRun bool) *execution.Restorer {
	return &execution.Restorer{
		Backend:    s.backend,
		Logger:     a.logger,
		Connection: s.settings.Connection,
		DryRun:     dryRun,
	}
}

// startTimings installs the step timing renderer when requested.
func (a *App) startTimings(ctx context.Context, enabled bool) func() {
	if !enabled || a.renderer == nil {
		return func() {}
	}
	shutdown := telemetry.Setup(a.renderer)
	return func() {
		//nolint:contextcheck // the run context may already be cancelled
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("failed to flush step timings: " + err.Error())
		}
	}
}

// checkRequirements reports every unmet requirement of tree and fails if there was any.
func (a *App) checkRequirements(tree *execution.Node) error {
	sink := execution.NewRequirementSink()
	tree.Requirements(sink)
	if sink.Finish(a.logger) {
		return domain.NewFailure(domain.ErrRequirementsNotMet, "requirements not met")
	}
	return nil
}

func resumeStore(project *domain.Project) ports.ResumeStore {
	return resume.NewStore(project.Root)
}
