//go:build darwin

package cleanup

import (
	"os"
	"path/filepath"
)

// DefaultTrash returns ~/.Trash, or NoTrash when home is unknown.
func DefaultTrash() Trasher {
	home, err := os.UserHomeDir()
	if err != nil {
		return NoTrash
	}
	return NewDirTrash(filepath.Join(home, ".Trash"))
}
