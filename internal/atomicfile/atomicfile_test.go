package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesParentAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.conf")

	require.NoError(t, Write(path, []byte("a=1\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a=1\n", string(data))
}

func TestWriteReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.conf")
	require.NoError(t, os.WriteFile(path, []byte("old content that is longer\n"), 0o644))

	synced := ""
	orig := syncDir
	syncDir = func(d string) error { synced = d; return nil }
	defer func() { syncDir = orig }()

	require.NoError(t, Write(path, []byte("new\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))
	assert.Equal(t, dir, synced)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.conf", entries[0].Name())
}

func TestWriteFailureKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.conf")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	// A directory in place of the target makes the rename fail.
	target := filepath.Join(dir, "busy")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0o755))

	assert.Error(t, Write(target, []byte("new\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary file left behind")
}
