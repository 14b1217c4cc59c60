//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package safety

type osProber struct{}

func (osProber) Locked(string) bool { return false }
