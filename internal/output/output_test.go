package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "report.json")

	require.NoError(t, WriteFile(dest, []byte("{\"ok\":true}")))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "{\"ok\":true}", string(data))
	assert.Equal(t, []string{"report.json"}, dirNames(t, dir))
}

func TestWriteFileReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	require.NoError(t, WriteFile(dest, []byte("new")))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestDiscardLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")

	w, err := NewFileWriter(dest)
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	w.Discard()

	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, dirNames(t, dir))
}

func TestDiscardAfterCommit(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")

	w, err := NewFileWriter(dest)
	require.NoError(t, err)
	_, err = w.Write([]byte("kept"))
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	w.Discard()

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))
	assert.Equal(t, []string{"out.txt"}, dirNames(t, dir))
}

func TestConcurrentWriterRejected(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")

	first, err := NewFileWriter(dest)
	require.NoError(t, err)
	defer first.Discard()

	_, err = NewFileWriter(dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write lock")
}

func TestWriteFileMissingDir(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "no-such-dir", "out.txt")
	require.Error(t, WriteFile(dest, []byte("x")))
}
