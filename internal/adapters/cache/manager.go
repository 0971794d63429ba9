// Package cache stores database snapshots keyed by the state they capture.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/dbbm/internal/ui/style"
	"go.trai.ch/zerr"
)

const (
	// partialSuffix marks a backup still being written.
	partialSuffix = ".partial"
	// partialMaxAge is how long collection leaves a partial backup alone.
	partialMaxAge = 24 * time.Hour
)

// Manager implements ports.CacheManager on top of a directory of backup files
// and a JSON hit-table recording when each backup was last used.
type Manager struct {
	root        string
	maxSize     int64
	backend     ports.SQLBackend
	logger      ports.Logger
	clock       clockwork.Clock
	lockTimeout time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for hit timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithLockTimeout bounds how long hit-table updates wait for the lock.
func WithLockTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.lockTimeout = d
	}
}

// NewManager creates a Manager rooted at root. A negative maxSize disables eviction.
func NewManager(root string, maxSize int64, backend ports.SQLBackend, logger ports.Logger, opts ...Option) *Manager {
	m := &Manager{
		root:        root,
		maxSize:     maxSize,
		backend:     backend,
		logger:      logger,
		clock:       clockwork.NewRealClock(),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the cache directory.
func (m *Manager) Root() string {
	return m.root
}

// TryGet implements ports.CacheManager.
func (m *Manager) TryGet(dbName string, hash domain.StateHash, updateHit bool) (string, bool) {
	path := domain.CacheEntryPath(m.root, dbName, hash)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}

	if updateHit {
		//nolint:contextcheck // lookups happen outside any cancellable operation
		m.bump(context.Background(), domain.CacheKey{Database: dbName, Hash: hash})
	}
	return path, true
}

// Add implements ports.CacheManager.
func (m *Manager) Add(ctx context.Context, dbName string, hash domain.StateHash) {
	path := domain.CacheEntryPath(m.root, dbName, hash)
	if _, err := os.Stat(path); err == nil {
		return
	}

	failed := fmt.Sprintf("error caching %s, continuing anyway", dbName)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		m.logger.Warn(failed)
		return
	}

	m.logger.Info(fmt.Sprintf("caching %s to %s", dbName, path))
	partial := path + partialSuffix
	err := m.backend.Backup(ctx, dbName, partial, func(line domain.OutputLine) {
		if line.Stream == domain.StreamStderr {
			m.logger.Warn(style.Indent + line.Text)
			return
		}
		m.logger.Info(style.Indent + line.Text)
	})
	if err != nil {
		m.logger.Warn(failed)
		_ = os.Remove(partial)
		return
	}

	if err := m.publish(ctx, domain.CacheKey{Database: dbName, Hash: hash}, partial, path); err != nil {
		m.logger.Warn(failed + ": " + err.Error())
		_ = os.Remove(partial)
	}
}

// publish moves the finished backup into place and records its hit under the lock.
func (m *Manager) publish(ctx context.Context, key domain.CacheKey, partial, path string) error {
	return m.withLock(ctx, func() error {
		table, err := readHitTable(m.hitTablePath())
		if err != nil {
			return err
		}
		if err := os.Rename(partial, path); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to move backup into the cache"), "path", path)
		}
		table.set(key.Database, key.Hash.String(), domain.Ticks(m.clock.Now()))
		return table.write(m.hitTablePath())
	})
}

// UpdateHits implements ports.CacheManager.
func (m *Manager) UpdateHits(ctx context.Context, keys []domain.CacheKey) error {
	if len(keys) == 0 {
		return nil
	}

	return m.withLock(ctx, func() error {
		table, err := readHitTable(m.hitTablePath())
		if err != nil {
			return err
		}

		now := domain.Ticks(m.clock.Now())
		for _, k := range keys {
			table.set(k.Database, k.Hash.String(), now)
		}
		return table.write(m.hitTablePath())
	})
}

func (m *Manager) bump(ctx context.Context, key domain.CacheKey) {
	if err := m.UpdateHits(ctx, []domain.CacheKey{key}); err != nil {
		m.logger.Warn("failed to update cache hits: " + err.Error())
	}
}

func (m *Manager) hitTablePath() string {
	return filepath.Join(m.root, domain.HitTableFileName)
}
