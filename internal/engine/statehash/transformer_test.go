package statehash_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/statehash"
)

func sum(t *testing.T, tr *statehash.Transformer) domain.StateHash {
	t.Helper()
	h, err := tr.Sum()
	require.NoError(t, err)
	return h
}

func TestTransformer_Deterministic(t *testing.T) {
	a := statehash.New(domain.EmptyStateHash)
	_, _ = a.WriteString("create table users")
	b := statehash.New(domain.EmptyStateHash)
	_, _ = b.WriteString("create table users")

	assert.Equal(t, sum(t, a), sum(t, b))
}

func TestTransformer_ChainDependsOnPrevious(t *testing.T) {
	first := statehash.Strings(domain.EmptyStateHash, "step")
	second := statehash.Strings(first, "step")

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, domain.EmptyStateHash, first)
}

func TestTransformer_ReaderMatchesWrite(t *testing.T) {
	a := statehash.New(domain.EmptyStateHash)
	require.NoError(t, a.TransformReader(strings.NewReader("payload")))

	b := statehash.New(domain.EmptyStateHash)
	_, err := b.Write([]byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, sum(t, a), sum(t, b))
}

func TestTransformer_SingleUse(t *testing.T) {
	tr := statehash.New(domain.EmptyStateHash)
	_ = sum(t, tr)

	_, err := tr.Sum()
	require.ErrorIs(t, err, domain.ErrTransformerFinished)

	_, err = tr.WriteString("late")
	require.ErrorIs(t, err, domain.ErrTransformerFinished)

	require.ErrorIs(t, tr.TransformReader(strings.NewReader("late")), domain.ErrTransformerFinished)
	require.ErrorIs(t, tr.TransformFile("missing"), domain.ErrTransformerFinished)
}

func TestTransformFile_SmallFileHashedInFull(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.sql")
	require.NoError(t, os.WriteFile(path, []byte("select 1"), 0o600))

	fromFile := statehash.New(domain.EmptyStateHash)
	require.NoError(t, fromFile.TransformFile(path))

	fromString := statehash.New(domain.EmptyStateHash)
	_, _ = fromString.WriteString("select 1")

	assert.Equal(t, sum(t, fromString), sum(t, fromFile))
}

func TestTransformFile_Missing(t *testing.T) {
	tr := statehash.New(domain.EmptyStateHash)
	err := tr.TransformFile(filepath.Join(t.TempDir(), "nope.bak"))
	assert.ErrorContains(t, err, "failed to open file")
}

func TestTransformFile_LargeFileSampling(t *testing.T) {
	const size = 11 << 20
	// With this size consecutive samples are about 1126 bytes apart, so offset
	// 1100 falls between the first and the second sample.
	const unsampled = 1100

	dir := t.TempDir()
	content := make([]byte, size)
	for i := range content {
		content[i] = byte(i % 251)
	}
	mtime := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o600))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
		return path
	}
	hashFile := func(path string) domain.StateHash {
		tr := statehash.New(domain.EmptyStateHash)
		require.NoError(t, tr.TransformFile(path))
		return sum(t, tr)
	}

	original := write("a.bak", content)

	between := append([]byte(nil), content...)
	between[unsampled] ^= 0xff
	interior := write("b.bak", between)

	sampled := append([]byte(nil), content...)
	sampled[0] ^= 0xff
	head := write("c.bak", sampled)

	assert.Equal(t, hashFile(original), hashFile(interior), "bytes between samples are not hashed")
	assert.NotEqual(t, hashFile(original), hashFile(head), "sampled bytes are hashed")

	later := mtime.Add(time.Second)
	require.NoError(t, os.Chtimes(interior, later, later))
	assert.NotEqual(t, hashFile(original), hashFile(interior), "modification time is hashed")
}
