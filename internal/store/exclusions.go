package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
	"github.com/cloudcleaner/cloudcleaner/internal/safety"
)

// ExclusionStore is the user's list of paths that must never be deleted.
// The classifier reads it through safety.ExclusionSource.
type ExclusionStore interface {
	safety.ExclusionSource
	AddExclusion(path string) error
	RemoveExclusion(path string) error
}

// FileExclusions keeps the exclusion list as a JSON array in a file. The
// file is re-read on every call, so edits from another process are seen.
type FileExclusions struct {
	fs   afero.Fs
	path string

	mu sync.Mutex
}

var _ ExclusionStore = (*FileExclusions)(nil)

// NewFileExclusions returns an exclusion list stored at path on fs.
func NewFileExclusions(fs afero.Fs, path string) *FileExclusions {
	return &FileExclusions{fs: fs, path: path}
}

// ListExclusions returns the entries in insertion order. A missing file
// is an empty list.
func (x *FileExclusions) ListExclusions() ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.load()
}

// AddExclusion appends path. Adding an entry that is already present is
// a no-op.
func (x *FileExclusions) AddExclusion(path string) error {
	path = normalizeEntry(path)
	if path == "" {
		return ccerrors.New(ccerrors.ErrConfigInvalid, "exclusion path is empty")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	entries, err := x.load()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e == path {
			return nil
		}
	}
	return x.save(append(entries, path))
}

// RemoveExclusion deletes path from the list. Removing an entry that is
// not present fails with NOT_FOUND.
func (x *FileExclusions) RemoveExclusion(path string) error {
	path = normalizeEntry(path)

	x.mu.Lock()
	defer x.mu.Unlock()

	entries, err := x.load()
	if err != nil {
		return err
	}
	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e == path {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ccerrors.Newf(ccerrors.ErrNotFound, "%s is not excluded", path).WithDetail("path", path)
	}
	return x.save(kept)
}

func normalizeEntry(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}

func (x *FileExclusions) load() ([]string, error) {
	b, err := afero.ReadFile(x.fs, x.path)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, ccerrors.Wrap(err, ccerrors.ErrIO, "failed to read exclusions").WithDetail("path", x.path)
	}
	var entries []string
	if len(strings.TrimSpace(string(b))) == 0 {
		return []string{}, nil
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, ccerrors.Wrap(err, ccerrors.ErrConfigInvalid, "malformed exclusions file").WithDetail("path", x.path)
	}
	return entries, nil
}

func (x *FileExclusions) save(entries []string) error {
	if err := x.fs.MkdirAll(filepath.Dir(x.path), 0o755); err != nil {
		return ccerrors.Wrap(err, ccerrors.ErrIO, "failed to create exclusions directory")
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := x.path + ".tmp"
	if err := afero.WriteFile(x.fs, tmp, append(b, '\n'), 0o644); err != nil {
		return ccerrors.Wrap(err, ccerrors.ErrIO, "failed to write exclusions")
	}
	if err := x.fs.Rename(tmp, x.path); err != nil {
		_ = x.fs.Remove(tmp)
		return ccerrors.Wrap(err, ccerrors.ErrIO, "failed to replace exclusions file")
	}
	return nil
}
