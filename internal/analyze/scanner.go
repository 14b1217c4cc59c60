// Package analyze measures the on-disk size of candidate roots.
package analyze

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/cloudcleaner/cloudcleaner/internal/core"
)

// MaxWarnings caps the warnings kept by a Scanner.
const MaxWarnings = 500

// Usage is the measured size of one root.
type Usage struct {
	Path    string    `json:"path"`
	Bytes   int64     `json:"bytes"`
	Files   int64     `json:"files"`
	Dirs    int64     `json:"dirs"`
	Skipped int64     `json:"skipped"`
	IsDir   bool      `json:"is_dir"`
	ModTime time.Time `json:"mod_time"`
}

// Scanner walks directory trees and sums regular file sizes. It is safe
// for concurrent use; each Measure call walks one root on the calling
// goroutine.
type Scanner struct {
	fs              afero.Fs
	caseInsensitive bool

	mu           sync.Mutex
	warnings     []string
	scannedCount atomic.Int64
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFs sets the filesystem walked. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) { s.fs = fs }
}

// WithCaseInsensitive makes exclude paths match regardless of case.
func WithCaseInsensitive(fold bool) Option {
	return func(s *Scanner) { s.caseInsensitive = fold }
}

// NewScanner creates a scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Warnings returns any warnings accumulated during scanning.
func (s *Scanner) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

// ScannedCount returns the number of entries scanned so far.
func (s *Scanner) ScannedCount() int64 {
	return s.scannedCount.Load()
}

func (s *Scanner) addWarning(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.warnings) < MaxWarnings {
		s.warnings = append(s.warnings, msg)
	}
}

func (s *Scanner) key(path string) string {
	path = filepath.Clean(path)
	if s.caseInsensitive {
		return strings.ToLower(path)
	}
	return path
}

// Measure sums the sizes of regular files under root. Symlinks and
// reparse points are neither followed nor counted. Directories listed in
// exclude are skipped without being counted as skipped entries; they are
// measured on their own.
//
// Entries that cannot be read are skipped and counted in Usage.Skipped.
// The context is checked before each directory is read; on cancellation
// the partial usage is returned with ctx.Err().
func (s *Scanner) Measure(ctx context.Context, root string, exclude []string) (Usage, error) {
	root = filepath.Clean(root)
	usage := Usage{Path: root}

	info, err := core.Lstat(s.fs, longPath(root))
	if err != nil {
		return usage, err
	}
	usage.ModTime = info.ModTime()
	s.scannedCount.Add(1)

	switch {
	case info.Mode()&os.ModeSymlink != 0 || isReparsePoint(info):
		return usage, nil
	case !info.IsDir():
		if info.Mode().IsRegular() {
			usage.Bytes = info.Size()
			usage.Files = 1
		}
		return usage, nil
	}
	usage.IsDir = true

	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[s.key(e)] = true
	}

	stack := []string{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return usage, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		usage.Dirs++

		entries, err := afero.ReadDir(s.fs, longPath(dir))
		if err != nil {
			usage.Skipped++
			s.addWarning("cannot read " + dir + ": " + err.Error())
			continue
		}

		for _, e := range entries {
			s.scannedCount.Add(1)
			childPath := filepath.Join(dir, e.Name())
			mode := e.Mode()

			switch {
			case mode&os.ModeSymlink != 0 || isReparsePoint(e):
				continue
			case e.IsDir():
				if skip[s.key(childPath)] {
					continue
				}
				stack = append(stack, childPath)
			case mode.IsRegular():
				usage.Bytes += e.Size()
				usage.Files++
			}
		}
	}

	return usage, nil
}
