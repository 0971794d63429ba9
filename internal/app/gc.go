package app

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
)

// GarbageCollect trims the state cache to its configured size.
func (a *App) GarbageCollect(ctx context.Context, opts GCOptions) error {
	s, err := a.open(opts.CommonOptions, false)
	if err != nil {
		return err
	}

	if s.settings.Cache.Disabled {
		a.logger.Info("cache is disabled, nothing to collect")
		return nil
	}

	cache := a.caches.Open(s.settings.Cache, s.backend)
	_, err = cache.GarbageCollect(ctx, domain.GCOptions{DryRun: opts.DryRun})
	return err
}
