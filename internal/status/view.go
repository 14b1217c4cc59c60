package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cloudcleaner/cloudcleaner/internal/core"
	"github.com/cloudcleaner/cloudcleaner/internal/ui"
)

// Render formats r for a terminal of the given width.
func Render(r *Report, width int) string {
	if width < 50 {
		width = 50
	}
	barW := 24
	if width > 110 {
		barW = 40
	}

	var lines []string
	lines = append(lines, ui.TitleStyle.Render("  Disk usage")+ui.MutedStyle.Render("  "+r.Host))
	lines = append(lines, "")

	pathW := 4
	for _, v := range r.Volumes {
		if w := lipgloss.Width(v.Path); w > pathW {
			pathW = w
		}
	}
	if max := width - barW - 40; pathW > max && max > 4 {
		pathW = max
	}

	for _, v := range r.Volumes {
		lines = append(lines,
			fmt.Sprintf("  %-*s %s  %5.1f%%  %s / %s  %s",
				pathW, ui.Truncate(v.Path, pathW),
				ui.Bar(v.UsedPercent, barW), v.UsedPercent,
				core.FormatSize(int64(v.Used)),
				core.FormatSize(int64(v.Total)),
				ui.MutedStyle.Render(core.FormatSize(int64(v.Free))+" free")))
	}

	lines = append(lines, "")
	if r.TrashAvailable {
		lines = append(lines, fmt.Sprintf("  Trash  %s", core.FormatSize(r.TrashBytes)))
	} else {
		lines = append(lines, ui.MutedStyle.Render("  Trash  unavailable"))
	}

	for _, w := range r.Warnings {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(ui.ColorWarning).
			Render("  "+ui.IconWarning+" "+w))
	}

	return strings.Join(lines, "\n") + "\n"
}
