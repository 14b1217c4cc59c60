package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformFor(t *testing.T) {
	tests := []struct {
		goos string
		want Platform
	}{
		{"windows", PlatformWindows},
		{"darwin", PlatformDarwin},
		{"linux", PlatformLinux},
		{"freebsd", DefaultPlatform},
		{"plan9", DefaultPlatform},
		{"", DefaultPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			assert.Equal(t, tt.want, PlatformFor(tt.goos))
		})
	}
}

func TestCaseInsensitive(t *testing.T) {
	assert.True(t, PlatformWindows.CaseInsensitive())
	assert.True(t, PlatformDarwin.CaseInsensitive())
	assert.False(t, PlatformLinux.CaseInsensitive())
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
	assert.Equal(t, "150 MiB", FormatSize(150<<20))
	assert.Equal(t, "-1.0 KiB", FormatSize(-1024))
}

func TestDescribeNotEmpty(t *testing.T) {
	assert.NotEmpty(t, Describe(context.Background()))
}
