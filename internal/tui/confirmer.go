package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"cmdfix/internal/fix"
)

// Confirmer asks for each candidate with a bubbletea prompt. It renders
// inline rather than in the alt screen so the prompt stays in scrollback.
type Confirmer struct {
	styles Styles
	in     io.Reader
	out    io.Writer
}

// NewConfirmer creates a Confirmer reading keys from in and drawing to out.
func NewConfirmer(styles Styles, in io.Reader, out io.Writer) *Confirmer {
	return &Confirmer{styles: styles, in: in, out: out}
}

// Confirm implements fix.Confirmer
func (c *Confirmer) Confirm(ctx context.Context, p fix.Prompt) (fix.Decision, error) {
	prog := tea.NewProgram(NewModel(p, c.styles),
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(c.out),
	)

	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return fix.Abort, ctx.Err()
		}
		return fix.Abort, fmt.Errorf("confirmation prompt: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return fix.Abort, fmt.Errorf("confirmation prompt: unexpected model %T", final)
	}
	d, _ := m.Decision()
	return d, nil
}
