package cache

import (
	"cmp"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/zerr"
)

type cachedFile struct {
	key  domain.CacheKey
	rel  string
	size int64
	hit  int64
}

// GarbageCollect implements ports.CacheManager.
func (m *Manager) GarbageCollect(ctx context.Context, opts domain.GCOptions) (*domain.GCReport, error) {
	var report *domain.GCReport

	err := m.withLock(ctx, func() error {
		table, err := readHitTable(m.hitTablePath())
		if err != nil {
			return err
		}

		report, err = m.collect(table, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, line := range FormatReport(report, opts.DryRun) {
		m.logger.Info(line)
	}
	return report, nil
}

func (m *Manager) collect(table hitTable, opts domain.GCOptions) (*domain.GCReport, error) {
	report := &domain.GCReport{}

	files, orphans, err := m.scan(table)
	if err != nil {
		return nil, err
	}

	for _, o := range orphans {
		report.OrphanFiles = append(report.OrphanFiles, o.rel)
		report.FreedBytes += o.size
	}

	present := make(map[domain.CacheKey]bool, len(files))
	for _, f := range files {
		present[f.key] = true
	}

	var stale [][2]string
	for _, db := range sortedKeys(table) {
		for _, hex := range sortedKeys(table[db]) {
			h, err := domain.ParseStateHash(hex)
			if err != nil || h.String() != hex {
				stale = append(stale, [2]string{db, hex})
				continue
			}
			key := domain.CacheKey{Database: db, Hash: h}
			if !present[key] {
				report.DroppedEntries = append(report.DroppedEntries, key)
				stale = append(stale, [2]string{db, hex})
			}
		}
	}

	slices.SortFunc(files, func(a, b cachedFile) int {
		return cmp.Or(
			cmp.Compare(a.hit, b.hit),
			cmp.Compare(a.key.Database, b.key.Database),
			cmp.Compare(a.rel, b.rel),
		)
	})

	var retained int64
	for _, f := range files {
		retained += f.size
	}

	var evicted []cachedFile
	if m.maxSize >= 0 {
		for _, f := range files {
			if retained <= m.maxSize {
				break
			}
			evicted = append(evicted, f)
			report.Evicted = append(report.Evicted, f.key)
			retained -= f.size
			report.FreedBytes += f.size
		}
	}
	report.RetainedBytes = retained

	if opts.DryRun {
		return report, nil
	}

	for _, o := range orphans {
		m.remove(o.rel)
	}
	for _, f := range evicted {
		m.remove(f.rel)
		table.remove(f.key.Database, f.key.Hash.String())
	}
	for _, s := range stale {
		table.remove(s[0], s[1])
	}

	if err := table.write(m.hitTablePath()); err != nil {
		return nil, err
	}
	return report, nil
}

// scan lists the cache directory. Files whose name is not a lowercase hash or that
// have no hit-table entry are returned as orphans.
func (m *Manager) scan(table hitTable) (files, orphans []cachedFile, err error) {
	cachesDir := filepath.Join(m.root, domain.CachesDirName)

	dbDirs, err := os.ReadDir(cachesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, zerr.With(zerr.Wrap(err, "failed to read cache directory"), "path", cachesDir)
	}

	for _, dbDir := range dbDirs {
		if !dbDir.IsDir() {
			if size, ok := regularSize(dbDir); ok {
				orphans = append(orphans, cachedFile{rel: filepath.Join(domain.CachesDirName, dbDir.Name()), size: size})
			}
			continue
		}

		db := dbDir.Name()
		entries, err := os.ReadDir(filepath.Join(cachesDir, db))
		if err != nil {
			return nil, nil, zerr.With(zerr.Wrap(err, "failed to read cache directory"), "path", filepath.Join(cachesDir, db))
		}

		for _, e := range entries {
			size, ok := regularSize(e)
			if !ok {
				continue
			}

			if m.inProgress(e) {
				continue
			}

			f := cachedFile{rel: filepath.Join(domain.CachesDirName, db, e.Name()), size: size}

			h, perr := domain.ParseStateHash(e.Name())
			hit, known := table.lookup(db, e.Name())
			if perr != nil || h.String() != e.Name() || !known {
				orphans = append(orphans, f)
				continue
			}

			f.key = domain.CacheKey{Database: db, Hash: h}
			f.hit = hit
			files = append(files, f)
		}
	}
	return files, orphans, nil
}

func (m *Manager) remove(rel string) {
	path := filepath.Join(m.root, rel)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("failed to remove " + path + ": " + err.Error())
	}
}

// inProgress reports whether e is a partial backup recent enough to still be written.
func (m *Manager) inProgress(e fs.DirEntry) bool {
	if !strings.HasSuffix(e.Name(), partialSuffix) {
		return false
	}
	info, err := e.Info()
	if err != nil {
		return false
	}
	return m.clock.Since(info.ModTime()) < partialMaxAge
}

func regularSize(e fs.DirEntry) (int64, bool) {
	if !e.Type().IsRegular() {
		return 0, false
	}
	info, err := e.Info()
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
