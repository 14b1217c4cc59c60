//go:build windows

package status

import (
	"context"
	"os"
	"strings"

	"github.com/yusufpapurcu/wmi"
)

// win32LogicalDisk is the subset of Win32_LogicalDisk we read.
type win32LogicalDisk struct {
	DeviceID   string
	FileSystem string
	VolumeName string
}

func systemRoot() string {
	drive := strings.ToUpper(os.Getenv("SYSTEMDRIVE"))
	if drive == "" {
		drive = "C:"
	}
	return drive + `\`
}

// platformVolumes lists local fixed drives (DriveType 3) via WMI, and
// probes drive letters when WMI is unavailable.
func platformVolumes(ctx context.Context) ([]Volume, error) {
	var disks []win32LogicalDisk
	err := wmi.Query("SELECT DeviceID, FileSystem, VolumeName FROM Win32_LogicalDisk WHERE DriveType = 3", &disks)
	if err != nil {
		return probeDrives(), nil
	}
	vols := make([]Volume, 0, len(disks))
	for _, d := range disks {
		vols = append(vols, Volume{Path: d.DeviceID + `\`, Device: d.VolumeName, FSType: d.FileSystem})
	}
	return vols, ctx.Err()
}

func probeDrives() []Volume {
	var vols []Volume
	for c := 'A'; c <= 'Z'; c++ {
		root := string(c) + `:\`
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		vols = append(vols, Volume{Path: root})
	}
	return vols
}
