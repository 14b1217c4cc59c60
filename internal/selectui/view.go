package selectui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cloudcleaner/cloudcleaner/internal/core"
	"github.com/cloudcleaner/cloudcleaner/internal/ui"
)

var (
	clrDim    = ui.ColorMuted
	clrPath   = ui.ColorText
	clrCursor = ui.ColorPrimary
)

// ─── Top-level view ──────────────────────────────────────────────────────────

func (m Model) renderView() string {
	if m.quitting {
		return ""
	}
	w := m.width
	if w < 40 {
		w = 40
	}

	var s strings.Builder
	s.WriteString(m.renderHeader(w))
	s.WriteString("\n")
	s.WriteString(m.renderBody(w))
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

// ─── Header ──────────────────────────────────────────────────────────────────

func (m Model) renderHeader(w int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Render("  Select items to clean")

	summary := lipgloss.NewStyle().
		Foreground(ui.ColorTextDim).
		Render(fmt.Sprintf("  %d candidates    %s reclaimable",
			m.result.TotalItems, core.FormatSize(m.result.TotalSizeBytes)))

	picked := lipgloss.NewStyle().
		Foreground(ui.ColorSecondary).
		Render(fmt.Sprintf("  %d selected    %s",
			len(m.selected), core.FormatSize(m.SelectedBytes())))

	inner := lipgloss.JoinVertical(lipgloss.Left, title, summary, picked)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Width(w - 2).
		Render(inner)
}

// ─── Body ────────────────────────────────────────────────────────────────────

func (m Model) renderBody(w int) string {
	items := m.visibleItems()
	if len(items) == 0 {
		msg := "  Nothing to clean."
		if m.largeOnly {
			msg = "  No candidates of 100 MiB or more."
		}
		return lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render(msg)
	}

	vh := m.viewportHeight()
	barWidth := 12
	if w > 110 {
		barWidth = 20
	}

	var lines []string
	for i := m.offset; i < len(items) && i < m.offset+vh; i++ {
		lines = append(lines, m.renderItem(i, barWidth, w))
	}

	if len(items) > vh {
		pct := float64(m.offset) / float64(len(items)-vh) * 100
		lines = append(lines, lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render(fmt.Sprintf("  ── %d/%d items  (%.0f%%) ──", min(m.offset+vh, len(items)), len(items), pct)))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderItem(idx, barWidth, w int) string {
	c := m.visibleItems()[idx]

	check := lipgloss.NewStyle().Foreground(clrDim).Render(ui.IconIdle)
	if m.selected[c.Path] {
		check = lipgloss.NewStyle().Foreground(ui.ColorSuccess).Render(ui.IconSelected)
	}

	var pct float64
	if m.result.TotalSizeBytes > 0 {
		pct = float64(c.SizeBytes) / float64(m.result.TotalSizeBytes) * 100
	}
	bar := ui.Bar(pct, barWidth)

	tag := ui.RiskStyle(c.RiskLevel).Render(fmt.Sprintf("%-6s", c.RiskLevel))
	if c.RequiresConfirmation {
		tag += " " + ui.TagWarningStyle.Render("confirm")
	}

	maxPath := w - barWidth - 44
	if maxPath < 16 {
		maxPath = 16
	}
	path := lipgloss.NewStyle().Foreground(clrPath).Render(ui.Truncate(c.Path, maxPath))
	category := lipgloss.NewStyle().Foreground(clrDim).Render(c.Category)

	line := fmt.Sprintf("  %s %s %9s  %s  %s  %s",
		check, bar, core.FormatSize(c.SizeBytes), tag, path, category)

	if idx == m.cursor {
		cursor := lipgloss.NewStyle().Foreground(clrCursor).Bold(true).Render(ui.IconChevron)
		line = " " + cursor + line[2:]
	}
	return line
}

// ─── Footer ──────────────────────────────────────────────────────────────────

func (m Model) renderFooter() string {
	var parts []string

	if m.confirmArmed {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(ui.ColorError).
			Bold(true).
			Render(fmt.Sprintf("  %s Press Enter again to clean %d item(s), %s",
				ui.IconWarning, len(m.selected), core.FormatSize(m.SelectedBytes()))))
	}
	if m.largeOnly {
		parts = append(parts, "  "+ui.TagWarningStyle.Render(" ≥100 MiB filter "))
	}
	parts = append(parts, "  "+m.help.View(m.keys))

	return strings.Join(parts, "\n")
}
