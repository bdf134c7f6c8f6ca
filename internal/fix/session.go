package fix

import (
	"github.com/google/uuid"

	"cmdfix/internal/command"
	"cmdfix/internal/rank"
)

// Session is one ranked set of candidates for one failed command. A repeat
// after a failed execution opens a new Session with Round incremented.
type Session struct {
	ID      string
	Round   int
	Command command.Command
	Cursor  *rank.Cursor
}

// NewSession creates a session over ranked candidates.
func NewSession(cmd command.Command, ranked []command.CorrectedCommand, round int) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Round:   round,
		Command: cmd,
		Cursor:  rank.NewCursor(ranked),
	}
}
