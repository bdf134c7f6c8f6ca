package rank

import (
	"errors"

	"cmdfix/internal/command"
)

var (
	// ErrNoNext is returned when moving past the last candidate.
	ErrNoNext = errors.New("no next candidate")

	// ErrNoPrevious is returned when moving before the first candidate.
	ErrNoPrevious = errors.New("no previous candidate")
)

// Cursor walks a ranked sequence without wrapping. Moving past either end
// reports the boundary and leaves the position unchanged.
type Cursor struct {
	items []command.CorrectedCommand
	pos   int
}

// NewCursor creates a cursor at the first of items.
func NewCursor(items []command.CorrectedCommand) *Cursor {
	return &Cursor{items: items}
}

// Current returns the candidate under the cursor. It is false only for an
// empty sequence.
func (c *Cursor) Current() (command.CorrectedCommand, bool) {
	if len(c.items) == 0 {
		return command.CorrectedCommand{}, false
	}
	return c.items[c.pos].Clone(), true
}

func (c *Cursor) HasNext() bool {
	return c.pos+1 < len(c.items)
}

func (c *Cursor) HasPrevious() bool {
	return c.pos > 0
}

// Next advances and returns the new current candidate.
func (c *Cursor) Next() (command.CorrectedCommand, error) {
	if !c.HasNext() {
		return command.CorrectedCommand{}, ErrNoNext
	}
	c.pos++
	return c.items[c.pos].Clone(), nil
}

// Previous steps back and returns the new current candidate.
func (c *Cursor) Previous() (command.CorrectedCommand, error) {
	if !c.HasPrevious() {
		return command.CorrectedCommand{}, ErrNoPrevious
	}
	c.pos--
	return c.items[c.pos].Clone(), nil
}

// Index returns the zero-based position.
func (c *Cursor) Index() int { return c.pos }

// Len returns the number of candidates.
func (c *Cursor) Len() int { return len(c.items) }

// Items returns a copy of the whole sequence.
func (c *Cursor) Items() []command.CorrectedCommand {
	out := make([]command.CorrectedCommand, len(c.items))
	for i, it := range c.items {
		out[i] = it.Clone()
	}
	return out
}
