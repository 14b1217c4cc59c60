package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
	"github.com/cloudcleaner/cloudcleaner/internal/testutil"
)

func TestFreedesktopTrash(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	trash := NewFreedesktopTrash(filepath.Join(dir, "Trash"))
	trash.now = func() time.Time { return time.Date(2026, 10, 3, 14, 5, 6, 0, time.Local) }
	require.True(t, trash.Available())

	first := filepath.Join(dir, "work dir", "cache")
	testutil.SparseFile(t, filepath.Join(first, "blob"), 2048)
	require.NoError(t, trash.Trash(first))

	_, err := os.Stat(first)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(trash.Dir, "files", "cache", "blob"))
	require.NoError(t, err)

	info, err := os.ReadFile(filepath.Join(trash.Dir, "info", "cache.trashinfo"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(info), "[Trash Info]\n"))
	assert.Contains(t, string(info), "Path="+filepath.ToSlash(dir)+"/work%20dir/cache\n")
	assert.Contains(t, string(info), "DeletionDate=2026-10-03T14:05:06\n")

	// A second item with the same name gets a distinct slot.
	second := filepath.Join(dir, "other", "cache")
	testutil.SparseFile(t, filepath.Join(second, "blob"), 1024)
	require.NoError(t, trash.Trash(second))
	_, err = os.Stat(filepath.Join(trash.Dir, "files", "cache.2"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(trash.Dir, "info", "cache.2.trashinfo"))
	require.NoError(t, err)

	size, err := trash.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3072), size)
}

func TestFreedesktopTrashMissingItem(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	trash := NewFreedesktopTrash(filepath.Join(dir, "Trash"))
	require.True(t, trash.Available())

	err := trash.Trash(filepath.Join(dir, "nothing"))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(trash.Dir, "info"))
	require.NoError(t, err)
	assert.Empty(t, entries, "info file is rolled back")
}

func TestFreedesktopTrashAvailableDoesNotCreate(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	trash := NewFreedesktopTrash(filepath.Join(dir, "share", "Trash"))
	assert.True(t, trash.Available())
	_, err := os.Stat(filepath.Join(dir, "share"))
	assert.True(t, os.IsNotExist(err), "Available only stats")

	blocker := filepath.Join(dir, "file")
	testutil.SparseFile(t, blocker, 1)
	assert.False(t, NewFreedesktopTrash(filepath.Join(blocker, "Trash")).Available())

	item := filepath.Join(dir, "item")
	testutil.SparseFile(t, item, 4)
	require.NoError(t, trash.Trash(item))
	_, err = os.Stat(filepath.Join(trash.Dir, "files", "item"))
	assert.NoError(t, err)
}

func TestDirTrash(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	trashDir := filepath.Join(dir, ".Trash")
	trash := NewDirTrash(trashDir)
	assert.False(t, trash.Available())
	require.NoError(t, os.Mkdir(trashDir, 0o700))
	assert.True(t, trash.Available())

	for _, sub := range []string{"a", "b"} {
		p := filepath.Join(dir, sub, "report.log")
		testutil.SparseFile(t, p, 10)
		require.NoError(t, trash.Trash(p))
	}

	_, err := os.Stat(filepath.Join(trashDir, "report.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(trashDir, "report 2.log"))
	assert.NoError(t, err)
}

func TestNoTrash(t *testing.T) {
	assert.False(t, NoTrash.Available())
	err := NoTrash.Trash("/x")
	assert.True(t, ccerrors.IsErrorCode(err, ccerrors.ErrTrashUnavailable))
}
