// Package tui provides the interactive model picker used by `ccs change`
package tui

import (
	"ccs/config/models"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// rows taken by the title, blank lines and help footer
const chromeHeight = 6

// Model is the picker state
type Model struct {
	title   string
	items   []models.ModelRef
	current string // entry currently assigned to the router

	cursor       int
	scrollOffset int
	height       int

	keys     KeyMap
	help     help.Model
	showHelp bool

	chosen    bool
	cancelled bool
}

// NewModel creates a picker over items with the cursor on current, if listed
func NewModel(title string, items []models.ModelRef, current string) Model {
	m := Model{
		title:   title,
		items:   items,
		current: current,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
	for i, item := range items {
		if item.String() == current {
			m.cursor = i
			break
		}
	}
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width
		m.adjustScrollOffset()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Select):
			if len(m.items) == 0 {
				m.cancelled = true
			} else {
				m.chosen = true
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
		case key.Matches(msg, m.keys.Bottom):
			if len(m.items) > 0 {
				m.cursor = len(m.items) - 1
			}
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
		}
		m.adjustScrollOffset()
	}
	return m, nil
}

// Selected returns the chosen entry, ok is false when the user cancelled
func (m Model) Selected() (models.ModelRef, bool) {
	if !m.chosen || m.cancelled || len(m.items) == 0 {
		return models.ModelRef{}, false
	}
	return m.items[m.cursor], true
}

func (m Model) visibleHeight() int {
	if m.height <= chromeHeight {
		return len(m.items)
	}
	return m.height - chromeHeight
}

// adjustScrollOffset keeps the cursor inside the visible window
func (m *Model) adjustScrollOffset() {
	visible := m.visibleHeight()
	if visible <= 0 {
		m.scrollOffset = 0
		return
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
	if maxOffset := len(m.items) - visible; m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
