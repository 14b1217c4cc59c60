// Package testutil holds filesystem fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// FaultyFs wraps an afero.Fs and fails selected operations with injected
// errors. Root can read anything on a real filesystem, so permission
// failures are simulated here rather than with chmod.
type FaultyFs struct {
	afero.Fs

	mu         sync.RWMutex
	errorPaths map[string]error
	statErrors map[string]error
}

// NewFaultyFs wraps base.
func NewFaultyFs(base afero.Fs) *FaultyFs {
	return &FaultyFs{
		Fs:         base,
		errorPaths: make(map[string]error),
		statErrors: make(map[string]error),
	}
}

// SetError makes opening or removing path fail with err.
func (f *FaultyFs) SetError(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorPaths[filepath.Clean(path)] = err
}

// SetStatError makes Stat and Lstat of path fail with err.
func (f *FaultyFs) SetStatError(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statErrors[filepath.Clean(path)] = err
}

func (f *FaultyFs) fault(op, name string) error {
	return f.lookup(f.errorPaths, op, name)
}

func (f *FaultyFs) lookup(m map[string]error, op, name string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err, ok := m[filepath.Clean(name)]; ok {
		return &os.PathError{Op: op, Path: name, Err: err}
	}
	return nil
}

func (f *FaultyFs) Open(name string) (afero.File, error) {
	if err := f.fault("open", name); err != nil {
		return nil, err
	}
	return f.Fs.Open(name)
}

func (f *FaultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err := f.fault("open", name); err != nil {
		return nil, err
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *FaultyFs) Remove(name string) error {
	if err := f.fault("remove", name); err != nil {
		return err
	}
	return f.Fs.Remove(name)
}

func (f *FaultyFs) RemoveAll(name string) error {
	if err := f.fault("remove", name); err != nil {
		return err
	}
	return f.Fs.RemoveAll(name)
}

// Stat fails only for paths registered with SetStatError: a directory
// that cannot be opened is still visible in its parent listing, as on a
// real filesystem.
func (f *FaultyFs) Stat(name string) (os.FileInfo, error) {
	if err := f.lookup(f.statErrors, "stat", name); err != nil {
		return nil, err
	}
	return f.Fs.Stat(name)
}

// LstatIfPossible lets FaultyFs satisfy afero.Lstater.
func (f *FaultyFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if err := f.lookup(f.statErrors, "lstat", name); err != nil {
		return nil, false, err
	}
	if l, ok := f.Fs.(afero.Lstater); ok {
		return l.LstatIfPossible(name)
	}
	fi, err := f.Fs.Stat(name)
	return fi, false, err
}
