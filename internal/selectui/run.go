package selectui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cloudcleaner/cloudcleaner/internal/discovery"
)

// Pick runs the picker full-screen and returns the chosen paths. A nil
// slice with a nil error means the user cancelled.
func Pick(result *discovery.Result) ([]string, error) {
	final, err := tea.NewProgram(New(result), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(Model)
	if !ok || !m.Confirmed() {
		return nil, nil
	}
	return m.Selected(), nil
}
