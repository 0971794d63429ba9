package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/zerr"
)

// hitTable maps database -> hex state hash -> last hit in ticks.
type hitTable map[string]map[string]int64

func readHitTable(path string) (hitTable, error) {
	//nolint:gosec // Path is derived from the configured cache root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return hitTable{}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", path)
	}

	table := hitTable{}
	if len(data) == 0 {
		return table, nil
	}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", path)
	}
	return table, nil
}

func (t hitTable) set(db, hash string, ticks int64) {
	entries, ok := t[db]
	if !ok {
		entries = make(map[string]int64)
		t[db] = entries
	}
	entries[hash] = ticks
}

func (t hitTable) lookup(db, hash string) (int64, bool) {
	ticks, ok := t[db][hash]
	return ticks, ok
}

func (t hitTable) remove(db, hash string) {
	entries, ok := t[db]
	if !ok {
		return
	}
	delete(entries, hash)
	if len(entries) == 0 {
		delete(t, db)
	}
}

// write replaces the file at path through a temporary file in the same directory.
func (t hitTable) write(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, domain.HitTableFileName+".*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", path)
	}
	return nil
}
