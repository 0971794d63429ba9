package execution_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports/mocks"
	"go.trai.ch/dbbm/internal/engine/execution"
	"go.trai.ch/dbbm/internal/engine/statehash"
	"go.uber.org/mock/gomock"
)

func writeBackups(t *testing.T) []domain.DatabaseBackupInfo {
	t.Helper()
	dir := t.TempDir()

	var out []domain.DatabaseBackupInfo
	for _, name := range []string{"Main", "Audit"} {
		path := filepath.Join(dir, name+"_R1.bak")
		require.NoError(t, os.WriteFile(path, []byte("backup of "+name), 0o600))
		out = append(out, domain.DatabaseBackupInfo{Name: name, BackupFilePath: path})
	}
	return out
}

func TestRestoreTransform_SimulateChainsBackupsByName(t *testing.T) {
	backups := writeBackups(t)
	tr := execution.NewRestoreTransform(&execution.Restorer{}, backups)

	got, err := tr.Simulate(t.Context(), domain.EmptyStateHash)
	require.NoError(t, err)

	want := statehash.New(domain.EmptyStateHash)
	require.NoError(t, want.TransformFile(backups[1].BackupFilePath))
	require.NoError(t, want.TransformFile(backups[0].BackupFilePath))
	wantHash, err := want.Sum()
	require.NoError(t, err)

	assert.Equal(t, wantHash, got)
}

func TestRestoreTransform_Run(t *testing.T) {
	backups := writeBackups(t)

	t.Run("restores each database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mocks.NewMockSQLBackend(ctrl)
		gomock.InOrder(
			backend.EXPECT().Restore(gomock.Any(), "Audit", backups[1].BackupFilePath, gomock.Nil(), gomock.Any()).Return(nil),
			backend.EXPECT().Restore(gomock.Any(), "Main", backups[0].BackupFilePath, gomock.Nil(), gomock.Any()).Return(nil),
		)

		log := &recorder{}
		tr := execution.NewRestoreTransform(&execution.Restorer{Backend: backend, Logger: log}, backups)

		simulated, err := tr.Simulate(t.Context(), domain.EmptyStateHash)
		require.NoError(t, err)
		got, err := tr.Run(t.Context(), domain.EmptyStateHash)
		require.NoError(t, err)

		assert.Equal(t, simulated, got)
		assert.Equal(t, []string{
			"restoring Audit from " + backups[1].BackupFilePath,
			"restoring Main from " + backups[0].BackupFilePath,
			"database restore completed",
		}, log.lines)
	})

	t.Run("relocates files", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mocks.NewMockSQLBackend(ctrl)
		backend.EXPECT().FileList(gomock.Any(), gomock.Any()).Return([]domain.BackupFile{
			{LogicalName: "data", PhysicalName: `D:\sql\orig.mdf`},
			{LogicalName: "log", PhysicalName: `D:\sql\orig_log.ldf`},
		}, nil).Times(2)
		backend.EXPECT().Restore(gomock.Any(), "Audit", gomock.Any(), []domain.FileRelocation{
			{LogicalName: "data", Path: filepath.Join("/data", "Audit.mdf")},
			{LogicalName: "log", Path: filepath.Join("/data", "Audit.ldf")},
		}, gomock.Any()).Return(nil)
		backend.EXPECT().Restore(gomock.Any(), "Main", gomock.Any(), gomock.Len(2), gomock.Any()).Return(nil)

		r := &execution.Restorer{
			Backend:    backend,
			Logger:     &recorder{},
			Connection: domain.Connection{Relocate: true, RelocatePath: "/data"},
		}
		_, err := execution.NewRestoreTransform(r, backups).Run(t.Context(), domain.EmptyStateHash)
		require.NoError(t, err)
	})

	t.Run("stderr is logged as warnings", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mocks.NewMockSQLBackend(ctrl)
		backend.EXPECT().Restore(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, _, _ string, _ []domain.FileRelocation, onLine func(domain.OutputLine)) error {
				onLine(domain.OutputLine{Stream: domain.StreamStdout, Text: "10 percent processed."})
				onLine(domain.OutputLine{Stream: domain.StreamStderr, Text: "Msg 3101, Level 16", Severity: 16})
				return nil
			}).Times(2)

		log := &recorder{}
		_, err := execution.NewRestoreTransform(&execution.Restorer{Backend: backend, Logger: log}, backups).
			Run(t.Context(), domain.EmptyStateHash)
		require.NoError(t, err)
		assert.Contains(t, log.lines, "WARN Msg 3101, Level 16")
	})

	t.Run("failure is soft", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mocks.NewMockSQLBackend(ctrl)
		backend.EXPECT().Restore(gomock.Any(), "Audit", gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("exit status 1"))

		_, err := execution.NewRestoreTransform(&execution.Restorer{Backend: backend, Logger: &recorder{}}, backups).
			Run(t.Context(), domain.EmptyStateHash)

		require.ErrorIs(t, err, domain.ErrRestoreFailed)
		assert.True(t, domain.IsSoftFailure(err))
	})

	t.Run("dry run only logs", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		backend := mocks.NewMockSQLBackend(ctrl)

		log := &recorder{}
		_, err := execution.NewRestoreTransform(&execution.Restorer{Backend: backend, Logger: log, DryRun: true}, backups).
			Run(t.Context(), domain.EmptyStateHash)
		require.NoError(t, err)
		assert.Len(t, log.lines, 3)
	})
}

func TestCachedRestoreTransform_KnownState(t *testing.T) {
	known := statehash.Strings(domain.EmptyStateHash, "cached")
	tr := execution.NewCachedRestoreTransform(&execution.Restorer{}, []domain.DatabaseBackupInfo{
		{Name: "Main", BackupFilePath: "/does/not/exist"},
	}, known)

	got, err := tr.Simulate(t.Context(), statehash.Strings(domain.EmptyStateHash, "anything"))
	require.NoError(t, err)
	assert.Equal(t, known, got)
	assert.Equal(t, "restore from cache", tr.Name())

	sink := execution.NewRequirementSink()
	tr.Requirements(sink)
	assert.False(t, sink.Failed())
}

func TestRelocations_Collisions(t *testing.T) {
	got := execution.Relocations("/data", "Main", []domain.BackupFile{
		{LogicalName: "primary", PhysicalName: "a.ndf"},
		{LogicalName: "secondary", PhysicalName: "b.ndf"},
	})

	assert.Equal(t, []domain.FileRelocation{
		{LogicalName: "primary", Path: filepath.Join("/data", "Main.ndf")},
		{LogicalName: "secondary", Path: filepath.Join("/data", "Main_secondary.ndf")},
	}, got)
}
