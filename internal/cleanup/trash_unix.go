//go:build !windows && !darwin

package cleanup

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultTrash returns the home trash of the freedesktop.org spec.
func DefaultTrash() Trasher {
	return NewFreedesktopTrash(filepath.Join(xdg.DataHome, "Trash"))
}
