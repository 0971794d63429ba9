package ports

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
)

// CacheManager stores per-database backups keyed by the state they capture.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type CacheManager interface {
	// TryGet returns the backup path for dbName at hash, if cached.
	// When updateHit is set, a hit also refreshes the entry's last-access time.
	TryGet(dbName string, hash domain.StateHash, updateHit bool) (string, bool)

	// Add backs up the live database into the cache at hash unless an entry exists.
	// Failures are logged and never returned: caching is an optimization.
	Add(ctx context.Context, dbName string, hash domain.StateHash)

	// UpdateHits marks the given entries as accessed now.
	UpdateHits(ctx context.Context, keys []domain.CacheKey) error

	// GarbageCollect reconciles the hit-table with the cache directory and evicts
	// least recently used entries until the cache fits its size limit.
	GarbageCollect(ctx context.Context, opts domain.GCOptions) (*domain.GCReport, error)
}
