//go:build !windows

package analyze

import "os"

func isReparsePoint(os.FileInfo) bool { return false }

func longPath(path string) string { return path }
