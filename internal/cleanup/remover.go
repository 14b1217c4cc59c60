package cleanup

import (
	"github.com/spf13/afero"
)

// Remover permanently removes a path and everything below it. A missing
// path is not an error.
type Remover interface {
	RemoveAll(path string) error
}

// RemoverFunc adapts a function to Remover.
type RemoverFunc func(path string) error

func (f RemoverFunc) RemoveAll(path string) error { return f(path) }

// fsRemover removes through an afero filesystem. RemoveAll on a symlink
// removes the link itself, never its target.
type fsRemover struct {
	fs afero.Fs
}

func (r fsRemover) RemoveAll(path string) error {
	return r.fs.RemoveAll(path)
}
