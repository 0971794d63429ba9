package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	lockInitialInterval = 50 * time.Millisecond
	lockMaxInterval     = time.Second
	defaultLockTimeout  = 30 * time.Second
)

// errLocked is returned by tryLock when another handle holds the lock.
var errLocked = errors.New("hit table is locked")

// withLock runs fn while holding the exclusive hit-table lock.
func (m *Manager) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(m.root, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create cache directory"), "path", m.root)
	}

	path := filepath.Join(m.root, domain.HitTableLockFileName)
	//nolint:gosec // Path is derived from the configured cache root
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.PrivateFilePerm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open lock file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // closing also drops the lock

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = lockInitialInterval
	b.MaxInterval = lockMaxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		err := tryLock(f)
		if err == nil || errors.Is(err, errLocked) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(m.lockTimeout))
	if err != nil {
		if errors.Is(err, errLocked) {
			return zerr.With(zerr.Wrap(err, domain.ErrCacheLockTimeout.Error()), "path", path)
		}
		return zerr.With(zerr.Wrap(err, "failed to lock hit table"), "path", path)
	}
	defer func() { _ = unlock(f) }()

	return fn()
}
