package command

import (
	"slices"
	"time"
)

// CorrectedCommand is a candidate replacement for a failed command.
type CorrectedCommand struct {
	Text                 string
	Original             Command // owned copy of the failed command
	Priority             int     // higher wins
	RequiresConfirmation bool
	SideEffects          []string // human-readable warnings, in display order
	Rules                []string // IDs of the rules that proposed this text
}

// NewCorrected creates a candidate that requires confirmation.
func NewCorrected(text string, original Command, priority int) CorrectedCommand {
	return CorrectedCommand{
		Text:                 text,
		Original:             original.clone(),
		Priority:             priority,
		RequiresConfirmation: true,
	}
}

// WithConfirmation returns a copy with the confirmation requirement set.
func (c CorrectedCommand) WithConfirmation(required bool) CorrectedCommand {
	out := c.Clone()
	out.RequiresConfirmation = required
	return out
}

// WithSideEffect returns a copy with warning appended.
func (c CorrectedCommand) WithSideEffect(warning string) CorrectedCommand {
	out := c.Clone()
	out.SideEffects = append(out.SideEffects, warning)
	return out
}

// Clone returns a deep copy.
func (c CorrectedCommand) Clone() CorrectedCommand {
	out := c
	out.Original = c.Original.clone()
	out.SideEffects = slices.Clone(c.SideEffects)
	out.Rules = slices.Clone(c.Rules)
	return out
}

// Command returns the candidate as a runnable Command: the candidate text in
// the original command's shell, working directory and environment.
func (c CorrectedCommand) Command() Command {
	return c.Original.WithText(c.Text).WithTimestamp(time.Now().UTC())
}

// Result is the outcome of running a command, produced by an executor.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Succeeded builds a successful Result.
func Succeeded(stdout string) Result {
	return Result{Success: true, Stdout: stdout}
}

// Failed builds a failed Result.
func Failed(exitCode int, stderr string) Result {
	return Result{ExitCode: exitCode, Stderr: stderr}
}
