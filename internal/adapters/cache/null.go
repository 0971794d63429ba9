package cache

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
)

// Null is a ports.CacheManager that never stores anything.
type Null struct{}

// TryGet always misses.
func (Null) TryGet(string, domain.StateHash, bool) (string, bool) { return "", false }

// Add does nothing.
func (Null) Add(context.Context, string, domain.StateHash) {}

// UpdateHits does nothing.
func (Null) UpdateHits(context.Context, []domain.CacheKey) error { return nil }

// GarbageCollect reports an empty collection.
func (Null) GarbageCollect(context.Context, domain.GCOptions) (*domain.GCReport, error) {
	return &domain.GCReport{}, nil
}
