package tui

import (
	"fmt"
	"io"

	"ccs/config/models"

	tea "github.com/charmbracelet/bubbletea"
)

// Pick runs the picker on the given terminal streams and returns the
// chosen entry. ok is false when the user cancelled.
func Pick(title string, items []models.ModelRef, current string, in io.Reader, out io.Writer) (models.ModelRef, bool, error) {
	p := tea.NewProgram(NewModel(title, items, current), tea.WithInput(in), tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		return models.ModelRef{}, false, fmt.Errorf("model picker failed: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return models.ModelRef{}, false, fmt.Errorf("model picker returned unexpected state %T", final)
	}
	ref, chosen := m.Selected()
	return ref, chosen, nil
}
