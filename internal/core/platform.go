package core

import "runtime"

// Platform selects the rule table and scan groups used for a host.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformDarwin  Platform = "darwin"
	PlatformLinux   Platform = "linux"
)

// DefaultPlatform is used for any GOOS without a dedicated profile. The
// linux table is the most conservative fit for other unix-likes.
const DefaultPlatform = PlatformLinux

// Platforms lists every platform with a profile.
var Platforms = []Platform{PlatformWindows, PlatformDarwin, PlatformLinux}

// DetectPlatform maps the running GOOS to a Platform.
func DetectPlatform() Platform {
	return PlatformFor(runtime.GOOS)
}

// PlatformFor maps a GOOS value to a Platform. Unknown values fall back to
// DefaultPlatform rather than failing.
func PlatformFor(goos string) Platform {
	switch goos {
	case "windows":
		return PlatformWindows
	case "darwin", "ios":
		return PlatformDarwin
	case "linux", "android":
		return PlatformLinux
	default:
		return DefaultPlatform
	}
}

// CaseInsensitive reports whether the platform's default filesystem
// compares names without regard to case.
func (p Platform) CaseInsensitive() bool {
	return p == PlatformWindows || p == PlatformDarwin
}

func (p Platform) String() string {
	return string(p)
}
