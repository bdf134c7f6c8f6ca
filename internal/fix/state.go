package fix

import (
	"fmt"

	"cmdfix/internal/command"
)

// StateKind enumerates the machine's states.
type StateKind int

const (
	StatePresenting StateKind = iota
	StateAwaitingConfirmation
	StateExecuting
	StateTerminal
)

func (k StateKind) String() string {
	switch k {
	case StatePresenting:
		return "presenting"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateExecuting:
		return "executing"
	case StateTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("state(%d)", int(k))
	}
}

// OutcomeKind enumerates how a fix ends.
type OutcomeKind int

const (
	OutcomeDone OutcomeKind = iota
	OutcomeAborted
	OutcomeExhausted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDone:
		return "done"
	case OutcomeAborted:
		return "aborted"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the terminal result. Result and Executed are set only for
// OutcomeDone.
type Outcome struct {
	Kind     OutcomeKind
	Result   command.Result
	Executed command.CorrectedCommand
}

// Done reports whether a candidate ran.
func (o Outcome) Done() bool { return o.Kind == OutcomeDone }

func (o Outcome) String() string {
	if o.Kind == OutcomeDone {
		return fmt.Sprintf("done(%q, exit %d)", o.Executed.Text, o.Result.ExitCode)
	}
	return o.Kind.String()
}

// State is one node of the machine. Candidate is meaningful for every kind
// but StateTerminal, Outcome only for StateTerminal.
type State struct {
	Kind      StateKind
	Candidate command.CorrectedCommand
	Outcome   Outcome
}

func presenting(c command.CorrectedCommand) State {
	return State{Kind: StatePresenting, Candidate: c}
}

func awaiting(c command.CorrectedCommand) State {
	return State{Kind: StateAwaitingConfirmation, Candidate: c}
}

func executing(c command.CorrectedCommand) State {
	return State{Kind: StateExecuting, Candidate: c}
}

func terminal(o Outcome) State {
	return State{Kind: StateTerminal, Outcome: o}
}

func (s State) String() string {
	if s.Kind == StateTerminal {
		return "terminal(" + s.Outcome.String() + ")"
	}
	return fmt.Sprintf("%s(%q)", s.Kind, s.Candidate.Text)
}

// Transition is reported to the observer on every state change.
type Transition struct {
	Session string
	From    State
	To      State
}
