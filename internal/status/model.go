package status

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cloudcleaner/cloudcleaner/internal/ui"
)

// ─── Messages ────────────────────────────────────────────────────────────────

// tickMsg carries the generation of the tick loop that scheduled it. A
// manual refresh starts a new generation, so the older tick is dropped.
type tickMsg struct {
	gen int
}

type reportMsg struct {
	report *Report
	err    error
}

// ─── Model ───────────────────────────────────────────────────────────────────

// Model is the bubbletea Model for the live disk usage view.
type Model struct {
	Report          *Report
	Width           int
	Height          int
	Err             error
	collector       *Collector
	refreshInterval time.Duration
	collecting      bool
	gen             int
	quitting        bool
}

// NewModel creates a Model that refreshes every refreshInterval.
func NewModel(c *Collector, refreshInterval time.Duration) Model {
	if refreshInterval <= 0 {
		refreshInterval = 2 * time.Second
	}
	return Model{
		Width:           80,
		Height:          24,
		collector:       c,
		refreshInterval: refreshInterval,
		collecting:      true,
	}
}

func (m Model) doTick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) collect() tea.Cmd {
	c := m.collector
	return func() tea.Msg {
		r, err := c.Collect(context.Background())
		return reportMsg{report: r, err: err}
	}
}

// ─── tea.Model interface ─────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	// The first reportMsg starts the tick loop, so collection and display
	// never overlap.
	return m.collect()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.collecting {
				return m, nil
			}
			m.gen++
			m.collecting = true
			return m, m.collect()
		}
		return m, nil

	case tickMsg:
		if msg.gen != m.gen || m.collecting {
			return m, nil
		}
		m.collecting = true
		return m, m.collect()

	case reportMsg:
		m.collecting = false
		if msg.err != nil {
			m.Err = msg.err
			return m, m.doTick()
		}
		m.Err = nil
		m.Report = msg.report
		return m, m.doTick()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.Report == nil {
		return lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render("  Collecting disk usage…")
	}
	return Render(m.Report, m.Width) + "\n" + m.renderFooter()
}

func (m Model) renderFooter() string {
	footer := ui.HintBarStyle.Render("  r refresh  " + ui.IconPipe + "  q quit")
	if m.Err != nil {
		errStr := ui.ErrorStyle.Render("  " + ui.IconError + " " + m.Err.Error())
		return errStr + "\n" + footer
	}
	return footer
}
