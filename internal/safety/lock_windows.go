//go:build windows

package safety

import (
	"golang.org/x/sys/windows"
)

// osProber opens the file with share mode 0. Any sharing, lock or access
// failure means another process holds it.
type osProber struct{}

func (osProber) Locked(path string) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	h, err := windows.CreateFile(p, windows.GENERIC_READ, 0, nil,
		windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		switch err {
		case windows.ERROR_SHARING_VIOLATION, windows.ERROR_LOCK_VIOLATION, windows.ERROR_ACCESS_DENIED:
			return true
		}
		return false
	}
	_ = windows.CloseHandle(h)
	return false
}
