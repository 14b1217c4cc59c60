package core

import (
	"github.com/dustin/go-humanize"
)

// FormatSize renders a byte count with binary units ("1.5 GiB").
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}
