package core

import (
	"os"

	"github.com/spf13/afero"
)

// Lstat stats name without following a final symlink when fs supports it.
// Filesystems without symlinks (afero.MemMapFs) fall back to Stat, which
// is equivalent there.
func Lstat(fs afero.Fs, name string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		fi, _, err := l.LstatIfPossible(name)
		return fi, err
	}
	return fs.Stat(name)
}

// EntryType names the kind of filesystem object fi describes, as used in
// audit records: "symlink", "directory" or "file".
func EntryType(fi os.FileInfo) string {
	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		return "symlink"
	case fi.IsDir():
		return "directory"
	default:
		return "file"
	}
}
