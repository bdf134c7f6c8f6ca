package fix

import (
	"context"

	"cmdfix/internal/command"
	"cmdfix/internal/dispatch"
)

// Decision is the user's answer to a confirmation prompt.
type Decision int

const (
	Accept Decision = iota
	Skip
	Abort
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Skip:
		return "skip"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// Prompt is what a Confirmer shows for one candidate.
type Prompt struct {
	Session   string
	Round     int
	Index     int // zero-based position in the ranked sequence
	Total     int
	Candidate command.CorrectedCommand
}

// Confirmer obtains a decision for a candidate. It blocks until the user
// answers.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (Decision, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, p Prompt) (Decision, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, p Prompt) (Decision, error) {
	return f(ctx, p)
}

// Executor runs an accepted command. A non-zero exit is reported in the
// Result; an error means the command could not be run at all.
type Executor interface {
	Execute(ctx context.Context, cmd command.Command) (command.Result, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, cmd command.Command) (command.Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, cmd command.Command) (command.Result, error) {
	return f(ctx, cmd)
}

// Evaluator produces raw candidates. *dispatch.Dispatcher implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, cmd command.Command, stderr string, shell command.Shell) (dispatch.Evaluation, error)
}

// SideEffectSource supplies extra warnings for a candidate text, typically
// from user configuration.
type SideEffectSource interface {
	SideEffectsFor(text string) []string
}
