// Package tui holds the interactive confirmation prompts.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"cmdfix/internal/fix"
)

// Model is the bubbletea model for confirming one candidate
type Model struct {
	prompt fix.Prompt
	styles Styles
	keys   keyMap
	help   help.Model

	decision fix.Decision
	done     bool

	// UI dimensions
	width int
}

// NewModel creates a Model for p
func NewModel(p fix.Prompt, styles Styles) Model {
	h := help.New()
	h.Styles.ShortKey = styles.Help
	h.Styles.ShortDesc = styles.Muted
	h.Styles.ShortSeparator = styles.Muted

	return Model{
		prompt:   p,
		styles:   styles,
		keys:     defaultKeyMap(),
		help:     h,
		decision: fix.Abort,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Decision returns the user's answer and whether one was given.
func (m Model) Decision() (fix.Decision, bool) {
	return m.decision, m.done
}
