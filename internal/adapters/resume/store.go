// Package resume persists the last state a deploy reached.
package resume

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.ResumeStore with a single file holding a hex hash.
type Store struct {
	path string
}

// NewStore creates a Store for the project rooted at projectRoot.
func NewStore(projectRoot string) *Store {
	return &Store{path: domain.ResumeFilePath(projectRoot)}
}

// Path returns the marker location.
func (s *Store) Path() string {
	return s.path
}

// Load implements ports.ResumeStore.
func (s *Store) Load() (domain.StateHash, error) {
	//nolint:gosec // Path is derived from the project root
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.StateHash{}, domain.NewFailure(domain.ErrResumeHashNotFound, "cannot find resume hash")
		}
		return domain.StateHash{}, zerr.With(zerr.Wrap(err, "failed to read resume marker"), "path", s.path)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return domain.StateHash{}, domain.NewFailure(domain.ErrResumeHashInvalid, "invalid resume hash format").WithCause(err)
	}

	hash, err := domain.ParseStateHash(strings.TrimSpace(line))
	if err != nil {
		return domain.StateHash{}, domain.NewFailure(domain.ErrResumeHashInvalid, "invalid resume hash format").WithCause(err)
	}
	return hash, nil
}

// Save implements ports.ResumeStore.
func (s *Store) Save(hash domain.StateHash) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, domain.ResumeFileName+".*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create resume marker"), "path", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(hash.String() + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to write resume marker"), "path", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to write resume marker"), "path", tmpName)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to replace resume marker"), "path", s.path)
	}
	return nil
}

// Clear implements ports.ResumeStore.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove resume marker"), "path", s.path)
	}
	return nil
}
