// Package ui holds the shared lipgloss palette, icons and styles used by
// the interactive picker and the plain-text reports.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}
	ColorText      = lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#e5e7eb"}
	ColorTextDim   = lipgloss.AdaptiveColor{Light: "#4b5563", Dark: "#9ca3af"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#6b7280"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	ColorCoral     = lipgloss.AdaptiveColor{Light: "#ea580c", Dark: "#fb923c"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
)

// ─── Icons ───────────────────────────────────────────────────────────────────

const (
	IconPipe     = "│"
	IconBullet   = "•"
	IconChevron  = "›"
	IconCheck    = "✓"
	IconError    = "✗"
	IconWarning  = "!"
	IconLock     = "⊘"
	IconFolder   = "▸"
	IconBlock    = "█"
	IconEmpty    = "░"
	IconSelected = "◉"
	IconIdle     = "○"
)

// ─── Styles ──────────────────────────────────────────────────────────────────

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	HintBarStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError)

	TagWarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	TagDangerStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)
)

// RiskStyle picks the tag style for a risk level.
func RiskStyle(level string) lipgloss.Style {
	switch level {
	case "high":
		return TagDangerStyle
	case "medium":
		return TagWarningStyle
	default:
		return SuccessStyle
	}
}

// UsageColor maps a fill percentage to green, yellow, coral or red.
func UsageColor(pct float64) lipgloss.AdaptiveColor {
	switch {
	case pct >= 90:
		return ColorError
	case pct >= 75:
		return ColorCoral
	case pct >= 50:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// Bar renders a width-cell bar filled to pct (0..100), coloured by
// UsageColor.
func Bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}

	fStr := lipgloss.NewStyle().Foreground(UsageColor(pct)).Render(strings.Repeat(IconBlock, filled))
	eStr := lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat(IconEmpty, width-filled))
	return fStr + eStr
}

// Truncate shortens s to max display cells, keeping the tail, which is the
// informative end of a path.
func Truncate(s string, max int) string {
	if max <= 1 || lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > max-1 {
		r = r[1:]
	}
	return "…" + string(r)
}
