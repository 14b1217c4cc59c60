// Package selectui lets a user pick scan candidates to clean, either in a
// bubbletea list or, when stdout is not a terminal, from a static listing.
package selectui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cloudcleaner/cloudcleaner/internal/discovery"
)

// largeThreshold is the cut-off for the large-only filter.
const largeThreshold = 100 << 20

// ─── Model ───────────────────────────────────────────────────────────────────

// Model is the bubbletea Model for the candidate picker.
type Model struct {
	result    *discovery.Result
	selected  map[string]bool
	cursor    int
	offset    int // viewport scroll offset
	width     int
	height    int
	largeOnly bool
	// Two-key confirm: the first Enter arms, the second accepts.
	confirmArmed bool
	confirmed    bool
	quitting     bool

	keys keyMap
	help help.Model
}

// New returns a picker over result's candidates. Nothing is selected
// initially.
func New(result *discovery.Result) Model {
	return Model{
		result:   result,
		selected: make(map[string]bool),
		width:    80,
		height:   24,
		keys:     newKeyMap(),
		help:     help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		if m.confirmArmed {
			m.confirmArmed = false
			if key.Matches(msg, m.keys.Confirm) && len(m.selected) > 0 {
				m.confirmed = true
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.ensureVisible()
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.visibleItems())-1 {
				m.cursor++
				m.ensureVisible()
			}

		case key.Matches(msg, m.keys.Toggle):
			items := m.visibleItems()
			if m.cursor >= 0 && m.cursor < len(items) {
				p := items[m.cursor].Path
				if m.selected[p] {
					delete(m.selected, p)
				} else {
					m.selected[p] = true
				}
			}

		case key.Matches(msg, m.keys.SelectAll):
			m.toggleAllSafe()

		case key.Matches(msg, m.keys.Large):
			m.largeOnly = !m.largeOnly
			m.cursor = 0
			m.offset = 0

		case key.Matches(msg, m.keys.Confirm):
			if len(m.selected) > 0 {
				m.confirmArmed = true
			}

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil
	}

	return m, nil
}

// View delegates to view.go renderView.
func (m Model) View() string {
	return m.renderView()
}

// Confirmed reports whether the user accepted the selection.
func (m Model) Confirmed() bool {
	return m.confirmed
}

// Selected returns the chosen paths in scan order (largest first).
func (m Model) Selected() []string {
	var out []string
	for _, c := range m.result.Items {
		if m.selected[c.Path] {
			out = append(out, c.Path)
		}
	}
	return out
}

// SelectedBytes sums the sizes of the chosen candidates.
func (m Model) SelectedBytes() int64 {
	var total int64
	for _, c := range m.result.Items {
		if m.selected[c.Path] {
			total += c.SizeBytes
		}
	}
	return total
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toggleAllSafe selects every visible safe candidate, or clears the
// selection when they are all selected already. Candidates that need
// confirmation are only ever picked one at a time.
func (m *Model) toggleAllSafe() {
	var safe []string
	allOn := true
	for _, c := range m.visibleItems() {
		if !c.SafeToDelete {
			continue
		}
		safe = append(safe, c.Path)
		if !m.selected[c.Path] {
			allOn = false
		}
	}
	for _, p := range safe {
		if allOn {
			delete(m.selected, p)
		} else {
			m.selected[p] = true
		}
	}
}

func (m *Model) ensureVisible() {
	vh := m.viewportHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
}

func (m Model) viewportHeight() int {
	h := m.height - 8 // header (4) + footer (3) + padding
	if h < 1 {
		h = 1
	}
	return h
}

// visibleItems returns the candidates, optionally filtered to large ones.
func (m Model) visibleItems() []discovery.Candidate {
	if m.result == nil {
		return nil
	}
	if !m.largeOnly {
		return m.result.Items
	}
	var out []discovery.Candidate
	for _, c := range m.result.Items {
		if c.SizeBytes >= largeThreshold {
			out = append(out, c)
		}
	}
	return out
}
