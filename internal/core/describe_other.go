//go:build !windows

package core

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// Describe returns a human-readable description of the host OS, e.g.
// "ubuntu 24.04 (debian)". Falls back to GOOS/GOARCH when the platform
// files cannot be read.
func Describe(ctx context.Context) string {
	platform, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil || platform == "" {
		return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	}
	if family != "" && family != platform {
		return fmt.Sprintf("%s %s (%s)", platform, version, family)
	}
	return fmt.Sprintf("%s %s", platform, version)
}
