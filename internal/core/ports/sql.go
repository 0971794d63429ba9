package ports

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
)

// SQLBackend runs scripts and backup primitives against the configured server.
//
//go:generate mockgen -source=sql.go -destination=mocks/mock_sql.go -package=mocks
type SQLBackend interface {
	// Exec runs a script. Every output line is passed to onLine in arrival order.
	// A non-nil error means the client could not be run at all; script failures
	// are reported through the result.
	Exec(ctx context.Context, req domain.SQLRequest, onLine func(domain.OutputLine)) (domain.ExecResult, error)

	// Backup writes a full backup of dbName to path.
	Backup(ctx context.Context, dbName, path string, onLine func(domain.OutputLine)) error

	// Restore replaces dbName with the backup at path, moving files as listed in relocations.
	Restore(
		ctx context.Context,
		dbName, path string,
		relocations []domain.FileRelocation,
		onLine func(domain.OutputLine),
	) error

	// FileList returns the logical and physical file names stored in a backup.
	FileList(ctx context.Context, path string) ([]domain.BackupFile, error)
}
