package app

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
)

// RunAction runs the recipes registered for an action on the features of a single release.
// Nothing is restored, cached or resumed.
func (a *App) RunAction(ctx context.Context, opts RunOptions) error {
	s, err := a.open(opts.CommonOptions, true)
	if err != nil {
		return err
	}

	rel, err := s.release(opts.Release)
	if err != nil {
		return err
	}
	env, err := s.environment(opts.Environment)
	if err != nil {
		return err
	}

	tree, err := buildReleaseNode(rel, s.project, a.taskEnv(s, opts.Action, env, opts.DryRun))
	if err != nil {
		return err
	}

	if err := a.checkRequirements(tree); err != nil {
		return err
	}

	stop := a.startTimings(ctx, opts.Timings)
	defer stop()

	rt := &execution.Runtime{
		Databases: s.project.Databases,
		Cache:     a.caches.Open(domain.CacheSettings{Disabled: true}, s.backend),
		Logger:    a.logger,
		Tracer:    a.tracer,
		Restorer:  a.restorer(s, opts.DryRun),
		DryRun:    opts.DryRun,
	}

	_, err = tree.Run(ctx, rt, domain.EmptyStateHash)
	return err
}
