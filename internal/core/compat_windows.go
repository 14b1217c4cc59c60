//go:build windows

package core

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows"
)

// Describe returns the Windows release and build, e.g.
// "Windows 11 (Build 22631)". RtlGetNtVersionNumbers needs no
// compatibility manifest, unlike GetVersionEx.
func Describe(_ context.Context) string {
	major, minor, build := windows.RtlGetNtVersionNumbers()
	build &= 0xFFFF // high bits carry the checked/free flag

	return fmt.Sprintf("%s (Build %d)", releaseName(major, minor, build), build)
}

func releaseName(major, minor, build uint32) string {
	switch {
	case major == 10 && build >= 22000:
		return "Windows 11"
	case major == 10:
		return "Windows 10"
	case major == 6 && minor == 3:
		return "Windows 8.1"
	case major == 6 && minor == 2:
		return "Windows 8"
	case major == 6 && minor == 1:
		return "Windows 7"
	default:
		return fmt.Sprintf("Windows %d.%d", major, minor)
	}
}
