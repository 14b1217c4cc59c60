//go:build !windows

package status

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// pseudoFS are filesystem types that never hold user data.
var pseudoFS = map[string]bool{
	"autofs": true, "binfmt_misc": true, "bpf": true, "cgroup": true,
	"cgroup2": true, "configfs": true, "debugfs": true, "devfs": true,
	"devpts": true, "devtmpfs": true, "fusectl": true, "hugetlbfs": true,
	"mqueue": true, "nsfs": true, "overlay": true, "proc": true,
	"pstore": true, "securityfs": true, "squashfs": true, "sysfs": true,
	"tmpfs": true, "tracefs": true, "nullfs": true,
}

func systemRoot() string { return "/" }

// platformVolumes lists physical partitions, dropping pseudo and snap
// filesystems.
func platformVolumes(ctx context.Context) ([]Volume, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	var vols []Volume
	for _, p := range parts {
		if pseudoFS[p.Fstype] || strings.HasPrefix(p.Mountpoint, "/snap/") {
			continue
		}
		vols = append(vols, Volume{Path: p.Mountpoint, Device: p.Device, FSType: p.Fstype})
	}
	return vols, nil
}
