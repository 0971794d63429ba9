// Package fs provides file system adapters for walking, listing and hashing files.
package fs

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileLister = (*Walker)(nil)

// Walker enumerates project files.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every file below root whose base name is name.
// Version control and dbbm state directories are skipped.
func (w *Walker) WalkFiles(root, name string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if d.Name() != name {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// ListFiles returns the regular files directly inside dir accepted by match, in natural order.
// A nil match accepts every file.
func (w *Walker) ListFiles(dir string, match func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list directory"), "path", dir)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if match == nil || match(e.Name()) {
			names = append(names, e.Name())
		}
	}

	slices.SortFunc(names, NaturalCompare)
	return names, nil
}

func skipDir(name string) bool {
	switch name {
	case ".git", ".jj", ".svn", domain.DbbmDirName:
		return true
	}
	return false
}
