package domain

// CacheKey identifies one cached database snapshot.
type CacheKey struct {
	Database string
	Hash     StateHash
}

// GCOptions controls a garbage collection pass.
type GCOptions struct {
	DryRun bool
}

// GCReport describes what a garbage collection pass removed or would remove.
type GCReport struct {
	// OrphanFiles are cache files that had no hit-table entry.
	OrphanFiles []string
	// DroppedEntries are hit-table entries whose file was missing.
	DroppedEntries []CacheKey
	// Evicted are entries removed to bring the cache under its size limit.
	Evicted       []CacheKey
	FreedBytes    int64
	RetainedBytes int64
}
