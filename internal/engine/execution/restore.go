package execution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/dbbm/internal/engine/statehash"
)

const restoreGroup = "restore databases"

// Restorer restores database backups through the SQL backend.
type Restorer struct {
	Backend    ports.SQLBackend
	Logger     ports.Logger
	Connection domain.Connection
	DryRun     bool
}

// RestoreTransform replaces every project database with a backup file.
type RestoreTransform struct {
	restorer  *Restorer
	databases []domain.DatabaseBackupInfo
	known     *domain.StateHash
}

// NewRestoreTransform restores the given backups. Its state is derived from the backup files.
func NewRestoreTransform(r *Restorer, databases []domain.DatabaseBackupInfo) *RestoreTransform {
	sorted := slices.Clone(databases)
	slices.SortFunc(sorted, func(a, b domain.DatabaseBackupInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return &RestoreTransform{restorer: r, databases: sorted}
}

// NewCachedRestoreTransform restores cached backups whose state is already known.
func NewCachedRestoreTransform(r *Restorer, databases []domain.DatabaseBackupInfo, known domain.StateHash) *RestoreTransform {
	t := NewRestoreTransform(r, databases)
	t.known = &known
	return t
}

// Databases returns the backups restored by the transform, sorted by database name.
func (t *RestoreTransform) Databases() []domain.DatabaseBackupInfo {
	return slices.Clone(t.databases)
}

// Name implements Transform.
func (t *RestoreTransform) Name() string {
	if t.known != nil {
		return "restore from cache"
	}
	return "restore databases"
}

// Simulate implements Transform.
func (t *RestoreTransform) Simulate(_ context.Context, hash domain.StateHash) (domain.StateHash, error) {
	if t.known != nil {
		return *t.known, nil
	}

	tr := statehash.New(hash)
	for _, db := range t.databases {
		if err := tr.TransformFile(db.BackupFilePath); err != nil {
			return hash, err
		}
	}
	return tr.Sum()
}

// Run implements Transform.
func (t *RestoreTransform) Run(ctx context.Context, hash domain.StateHash) (domain.StateHash, error) {
	next, err := t.Simulate(ctx, hash)
	if err != nil {
		return hash, err
	}

	log := Logger(ctx, t.restorer.Logger)
	for _, db := range t.databases {
		log.Info(fmt.Sprintf("restoring %s from %s", db.Name, db.BackupFilePath))
		if t.restorer.DryRun {
			continue
		}
		if err := t.restorer.restore(ctx, log, db); err != nil {
			return hash, err
		}
	}
	log.Info("database restore completed")

	return next, nil
}

// Requirements implements Transform.
func (t *RestoreTransform) Requirements(sink *RequirementSink) {
	if t.known != nil {
		return
	}
	for _, db := range t.databases {
		if _, err := os.Stat(db.BackupFilePath); err != nil {
			sink.Fail(restoreGroup, "backup file %s for database %s does not exist", db.BackupFilePath, db.Name)
		}
	}
}

func (r *Restorer) restore(ctx context.Context, log ports.Logger, db domain.DatabaseBackupInfo) error {
	var relocations []domain.FileRelocation
	if r.Connection.Relocate {
		files, err := r.Backend.FileList(ctx, db.BackupFilePath)
		if err != nil {
			return domain.NewFailure(domain.ErrRestoreFailed, "cannot read file list of %s", db.BackupFilePath).WithCause(err)
		}
		relocations = Relocations(r.Connection.RelocatePath, db.Name, files)
	}

	err := r.Backend.Restore(ctx, db.Name, db.BackupFilePath, relocations, func(line domain.OutputLine) {
		if line.Stream == domain.StreamStderr {
			log.Warn(line.Text)
		}
	})
	if err != nil {
		return domain.NewFailure(domain.ErrRestoreFailed, "restore of %s failed", db.Name).WithCause(err)
	}
	return nil
}

// Relocations moves every file of a backup to dir, named after the database.
// Files that would collide on the same target get the logical name appended.
func Relocations(dir, dbName string, files []domain.BackupFile) []domain.FileRelocation {
	out := make([]domain.FileRelocation, 0, len(files))
	used := make(map[string]bool, len(files))

	for _, f := range files {
		ext := filepath.Ext(strings.ReplaceAll(f.PhysicalName, `\`, "/"))
		target := filepath.Join(dir, dbName+ext)
		if used[target] {
			target = filepath.Join(dir, dbName+"_"+f.LogicalName+ext)
		}
		used[target] = true
		out = append(out, domain.FileRelocation{LogicalName: f.LogicalName, Path: target})
	}
	return out
}
