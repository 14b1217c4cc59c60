package cleanup

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cloudcleaner/cloudcleaner/internal/analyze"
	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
)

// Trasher moves paths to a reversible trash. Trash returns an error with
// code TRASH_UNAVAILABLE when the trash cannot take this particular path
// (for example a different volume); the executor then removes it
// permanently and reports the downgrade.
type Trasher interface {
	Available() bool
	Trash(path string) error
}

// TrashSizer is implemented by trashes that can report their size.
type TrashSizer interface {
	Size(ctx context.Context) (int64, error)
}

type noTrash struct{}

// NoTrash is a Trasher that is never available.
var NoTrash Trasher = noTrash{}

func (noTrash) Available() bool { return false }

func (noTrash) Trash(path string) error {
	return ccerrors.Newf(ccerrors.ErrTrashUnavailable, "no trash on this platform for %s", path)
}

// FreedesktopTrash implements the freedesktop.org trash specification in
// the home trash directory: files/ holds the items, info/ a .trashinfo
// file per item recording where it came from.
type FreedesktopTrash struct {
	Dir string
	now func() time.Time
}

// NewFreedesktopTrash returns a trash rooted at dir
// (normally $XDG_DATA_HOME/Trash).
func NewFreedesktopTrash(dir string) *FreedesktopTrash {
	return &FreedesktopTrash{Dir: dir, now: time.Now}
}

func (t *FreedesktopTrash) filesDir() string { return filepath.Join(t.Dir, "files") }
func (t *FreedesktopTrash) infoDir() string  { return filepath.Join(t.Dir, "info") }

// Available reports whether the trash exists or could be created. It only
// stats; the directories are made by the first Trash call.
func (t *FreedesktopTrash) Available() bool {
	for _, dir := range []string{t.filesDir(), t.infoDir()} {
		if !creatableDir(dir) {
			return false
		}
	}
	return true
}

// creatableDir reports whether dir is a directory or its nearest existing
// ancestor is one.
func creatableDir(dir string) bool {
	for {
		fi, err := os.Stat(dir)
		if err == nil {
			return fi.IsDir()
		}
		if !os.IsNotExist(err) {
			return false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

func (t *FreedesktopTrash) ensureDirs() error {
	if err := os.MkdirAll(t.filesDir(), 0o700); err != nil {
		return ccerrors.Wrap(err, ccerrors.ErrTrashUnavailable, "create trash files directory")
	}
	if err := os.MkdirAll(t.infoDir(), 0o700); err != nil {
		return ccerrors.Wrap(err, ccerrors.ErrTrashUnavailable, "create trash info directory")
	}
	return nil
}

// Trash moves path into the trash. The info file is created exclusively
// first to claim a unique name, then the item is renamed into place.
func (t *FreedesktopTrash) Trash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := t.ensureDirs(); err != nil {
		return err
	}
	base := filepath.Base(abs)

	for n := 1; ; n++ {
		name := base
		if n > 1 {
			name = base + "." + strconv.Itoa(n)
		}
		infoPath := filepath.Join(t.infoDir(), name+".trashinfo")
		f, err := os.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return err
		}

		info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
			(&url.URL{Path: abs}).EscapedPath(),
			t.now().Format("2006-01-02T15:04:05"))
		_, werr := f.WriteString(info)
		cerr := f.Close()
		if werr == nil {
			werr = cerr
		}
		if werr != nil {
			_ = os.Remove(infoPath)
			return werr
		}

		if err := os.Rename(abs, filepath.Join(t.filesDir(), name)); err != nil {
			_ = os.Remove(infoPath)
			return renameError(abs, err)
		}
		return nil
	}
}

// Size reports the bytes held in the trash.
func (t *FreedesktopTrash) Size(ctx context.Context) (int64, error) {
	return dirSize(ctx, t.filesDir())
}

// DirTrash moves items into a flat directory, as the macOS Finder does
// with ~/.Trash. It is available only if the directory already exists.
type DirTrash struct {
	Dir string
}

// NewDirTrash returns a trash backed by dir.
func NewDirTrash(dir string) *DirTrash {
	return &DirTrash{Dir: dir}
}

func (t *DirTrash) Available() bool {
	fi, err := os.Stat(t.Dir)
	return err == nil && fi.IsDir()
}

func (t *DirTrash) Trash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	base := filepath.Base(abs)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 1; ; n++ {
		name := base
		if n > 1 {
			name = stem + " " + strconv.Itoa(n) + ext
		}
		dst := filepath.Join(t.Dir, name)
		if _, err := os.Lstat(dst); err == nil {
			continue
		}
		if err := os.Rename(abs, dst); err != nil {
			return renameError(abs, err)
		}
		return nil
	}
}

func (t *DirTrash) Size(ctx context.Context) (int64, error) {
	return dirSize(ctx, t.Dir)
}

// renameError marks cross-device moves as a trash downgrade rather than
// a failure of the item.
func renameError(path string, err error) error {
	if errors.Is(err, syscall.EXDEV) {
		return ccerrors.Wrapf(err, ccerrors.ErrTrashUnavailable, "trash is on another volume than %s", path)
	}
	return err
}

func dirSize(ctx context.Context, dir string) (int64, error) {
	usage, err := analyze.NewScanner().Measure(ctx, dir, nil)
	if os.IsNotExist(err) {
		return 0, nil
	}
	return usage.Bytes, err
}
