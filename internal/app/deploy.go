package app

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/dbbm/internal/engine/execution"
	"go.trai.ch/dbbm/internal/engine/planner"
)

const deployAction = "deploy"

// Deploy restores the closest release backups and applies every release up to the target.
func (a *App) Deploy(ctx context.Context, opts DeployOptions) error {
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

	stop := a.startTimings(ctx, opts.Timings)
	defer stop()

	return a.deploy(ctx, s, rel, env, opts)
}

//nolint:cyclop // orchestration function
func (a *App) deploy(ctx context.Context, s *session, rel domain.Release, env domain.Environment, opts DeployOptions) error {
	plan, err := a.planner.Plan(planner.Request{
		Databases:   s.project.Databases,
		Releases:    s.project.Releases,
		Release:     rel,
		Environment: env.Name,
		Backups:     s.settings.Backups,
	})
	if err != nil {
		return err
	}

	cacheSettings := s.settings.Cache
	if opts.NoCache {
		cacheSettings.Disabled = true
	}
	cache := a.caches.Open(cacheSettings, s.backend)

	restorer := a.restorer(s, opts.DryRun)
	tree, err := buildDeployTree(plan, s.project, a.taskEnv(s, deployAction, env, opts.DryRun), restorer)
	if err != nil {
		return err
	}

	if err := a.checkRequirements(tree); err != nil {
		return err
	}

	rt := &execution.Runtime{
		Databases:     s.project.Databases,
		Cache:         cache,
		Resume:        resumeStore(s.project),
		Logger:        a.logger,
		Tracer:        a.tracer,
		Restorer:      restorer,
		MinDeployTime: s.settings.Cache.MinDeployTime,
		DryRun:        opts.DryRun,
	}

	// Soft failures past this point are reported as blocking.
	if err := a.execute(ctx, tree, rt, opts); err != nil {
		if domain.IsSoftFailure(err) {
			return domain.NewFailure(domain.ErrBlockingError, "blocking error detected").WithCause(err)
		}
		return err
	}

	if opts.DryRun {
		return nil
	}

	if s.settings.Cache.AutoGC && !cacheSettings.Disabled {
		if _, err := cache.GarbageCollect(ctx, domain.GCOptions{}); err != nil {
			a.logger.Warn("automatic garbage collection failed: " + err.Error())
		}
	}
	return nil
}

// execute calculates the optimized tree, runs it and clears the resume marker.
func (a *App) execute(ctx context.Context, tree *execution.Node, rt *execution.Runtime, opts DeployOptions) error {
	var resumeHash *domain.StateHash
	if opts.Resume {
		h, err := rt.Resume.Load()
		if err != nil {
			return err
		}
		resumeHash = &h
	}

	res, err := tree.Calculate(ctx, rt, domain.EmptyStateHash, resumeHash)
	if err != nil {
		return err
	}

	if res.Anchor != nil && !opts.DryRun {
		a.bumpHits(ctx, rt.Cache, rt.Databases, *res.Anchor)
	}

	if res.Node == nil {
		a.logger.Info("nothing to deploy, target state already reached")
	} else if _, err := res.Node.Run(ctx, rt, res.Entry); err != nil {
		return err
	}

	if opts.DryRun {
		return nil
	}

	if err := rt.Resume.Clear(); err != nil {
		a.logger.Warn("failed to remove resume marker: " + err.Error())
	}
	return nil
}

func (a *App) bumpHits(ctx context.Context, cache ports.CacheManager, databases []string, hash domain.StateHash) {
	keys := make([]domain.CacheKey, 0, len(databases))
	for _, db := range databases {
		keys = append(keys, domain.CacheKey{Database: db, Hash: hash})
	}
	if err := cache.UpdateHits(ctx, keys); err != nil {
		a.logger.Warn("failed to update cache hits: " + err.Error())
	}
}
