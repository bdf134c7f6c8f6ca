package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cmdfix/internal/fix"
)

// View renders the prompt. Once answered it collapses to a single line so
// the command's own output follows directly.
func (m Model) View() string {
	if m.done {
		return m.renderAnswer() + "\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.styles.Command.Render(m.prompt.Candidate.Text))
	b.WriteString("\n")

	for _, w := range m.prompt.Candidate.SideEffects {
		b.WriteString(m.styles.Warning.Render("⚠ " + w))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
	}
	return b.String()
}

// renderHeader renders the position and round line
func (m Model) renderHeader() string {
	title := m.styles.Title.Render("cmdfix")

	status := fmt.Sprintf("suggestion %d/%d", m.prompt.Index+1, m.prompt.Total)
	if m.prompt.Round > 0 {
		status += fmt.Sprintf(" (retry %d)", m.prompt.Round)
	}

	return title + m.styles.Muted.Render(m.styles.Separator) + m.styles.Status.Render(status)
}

func (m Model) renderAnswer() string {
	text := m.prompt.Candidate.Text
	switch m.decision {
	case fix.Accept:
		return m.styles.Accepted.Render("✔ " + text)
	case fix.Skip:
		return m.styles.Muted.Render("✗ " + text)
	default:
		return m.styles.Rejected.Render("✗ aborted")
	}
}
