//go:build windows

package analyze

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// isReparsePoint returns true if fi is a junction or symlink
// (FILE_ATTRIBUTE_REPARSE_POINT). Must be checked to avoid infinite recursion.
func isReparsePoint(fi os.FileInfo) bool {
	data, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok || data == nil {
		return false
	}
	const fileAttributeReparsePoint = 0x0400
	return data.FileAttributes&fileAttributeReparsePoint != 0
}

// longPath adds the \\?\ prefix for paths exceeding MAX_PATH.
func longPath(path string) string {
	if len(path) >= 260 && !strings.HasPrefix(path, `\\?\`) {
		return `\\?\` + filepath.Clean(path)
	}
	return path
}
