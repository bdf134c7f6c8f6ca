package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"cmdfix/internal/fix"
)

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if m.done {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Accept):
			return m.answer(fix.Accept)
		case key.Matches(msg, m.keys.Skip):
			return m.answer(fix.Skip)
		case key.Matches(msg, m.keys.Abort):
			return m.answer(fix.Abort)
		}
	}
	return m, nil
}

func (m Model) answer(d fix.Decision) (tea.Model, tea.Cmd) {
	m.decision = d
	m.done = true
	return m, tea.Quit
}
