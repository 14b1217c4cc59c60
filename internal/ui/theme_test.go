package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestUsageColor(t *testing.T) {
	tests := []struct {
		pct  float64
		want lipgloss.AdaptiveColor
	}{
		{0, ColorSuccess},
		{49.9, ColorSuccess},
		{50, ColorWarning},
		{75, ColorCoral},
		{90, ColorError},
		{100, ColorError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UsageColor(tt.pct), "pct %v", tt.pct)
	}
}

func TestBarWidth(t *testing.T) {
	for _, pct := range []float64{-5, 0, 33, 100, 150} {
		assert.Equal(t, 20, lipgloss.Width(Bar(pct, 20)), "pct %v", pct)
	}
	assert.Empty(t, Bar(50, 0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))

	got := Truncate("/home/user/.cache/some/very/long/path", 12)
	assert.Equal(t, 12, lipgloss.Width(got))
	assert.Equal(t, "…", string([]rune(got)[0]))
	assert.Contains(t, got, "long/path")
}
