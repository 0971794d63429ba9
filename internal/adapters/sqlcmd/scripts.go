package sqlcmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/zerr"
)

// Backup implements ports.SQLBackend.
func (b *Backend) Backup(ctx context.Context, dbName, path string, onLine func(domain.OutputLine)) error {
	compression := ""
	if b.opts.Compression {
		compression = ", COMPRESSION"
	}
	script := fmt.Sprintf("BACKUP DATABASE %s TO DISK = N'$(backupFile)' WITH COPY_ONLY, INIT, FORMAT%s, STATS = 10",
		quoteIdentifier(dbName), compression)

	res, err := b.run(ctx, script, map[string]string{"backupFile": path}, nil, onLine)
	if err != nil {
		return err
	}
	if res.Failed() {
		return zerr.With(zerr.With(domain.ErrBackupFailed, "database", dbName), "exit_code", res.ExitCode)
	}
	return nil
}

// Restore implements ports.SQLBackend.
func (b *Backend) Restore(
	ctx context.Context,
	dbName, path string,
	relocations []domain.FileRelocation,
	onLine func(domain.OutputLine),
) error {
	script, params := restoreScript(dbName, path, relocations)

	res, err := b.run(ctx, script, params, nil, onLine)
	if err != nil {
		return err
	}
	if res.Failed() {
		return zerr.With(zerr.With(domain.ErrRestoreFailed, "database", dbName), "exit_code", res.ExitCode)
	}
	return nil
}

// FileList implements ports.SQLBackend.
func (b *Backend) FileList(ctx context.Context, path string) ([]domain.BackupFile, error) {
	var files []domain.BackupFile
	var stderr []string

	script := "SET NOCOUNT ON; RESTORE FILELISTONLY FROM DISK = N'$(backupFile)'"
	res, err := b.run(ctx, script, map[string]string{"backupFile": path}, []string{"-h", "-1", "-s", "|", "-W"},
		func(line domain.OutputLine) {
			if line.Stream == domain.StreamStderr {
				stderr = append(stderr, line.Text)
				return
			}
			cols := strings.Split(line.Text, "|")
			if len(cols) < 2 {
				return
			}
			files = append(files, domain.BackupFile{
				LogicalName:  strings.TrimSpace(cols[0]),
				PhysicalName: strings.TrimSpace(cols[1]),
			})
		})
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		return nil, zerr.With(zerr.With(domain.ErrRestoreFailed, "path", path), "output", strings.Join(stderr, "\n"))
	}
	return files, nil
}

func restoreScript(dbName, path string, relocations []domain.FileRelocation) (string, map[string]string) {
	params := map[string]string{"backupFile": path}

	var moves strings.Builder
	for i, r := range relocations {
		l, p := "l"+strconv.Itoa(i), "p"+strconv.Itoa(i)
		params[l] = r.LogicalName
		params[p] = r.Path
		fmt.Fprintf(&moves, ", MOVE N'$(%s)' TO N'$(%s)'", l, p)
	}

	db := quoteIdentifier(dbName)
	var b strings.Builder
	b.WriteString("USE [master]\n")
	fmt.Fprintf(&b, "IF db_id(%s) IS NOT NULL ALTER DATABASE %s SET SINGLE_USER WITH ROLLBACK IMMEDIATE\n", quoteString(dbName), db)
	fmt.Fprintf(&b, "RESTORE DATABASE %s FROM DISK = N'$(backupFile)' WITH FILE = 1%s, NOUNLOAD, REPLACE, STATS = 5\n", db, moves.String())
	fmt.Fprintf(&b, "ALTER DATABASE %s SET MULTI_USER", db)
	return b.String(), params
}

func quoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func quoteString(s string) string {
	return "N'" + strings.ReplaceAll(s, "'", "''") + "'"
}
