//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package safety

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// osProber takes and releases a non-blocking exclusive flock. Only
// contention counts as locked; a file that cannot be opened at all is left
// to the removal step to report.
type osProber struct{}

func (osProber) Locked(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return errors.Is(err, unix.EWOULDBLOCK)
	}
	_ = unix.Flock(fd, unix.LOCK_UN)
	return false
}
