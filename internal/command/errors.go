package command

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the rule engine and its callers.
var (
	// ErrValidation is returned when a command is rejected before dispatch.
	ErrValidation = errors.New("validation error")

	// ErrParse is returned when a command cannot be tokenized.
	ErrParse = errors.New("failed to parse command")

	// ErrRuleExecution marks a rule whose matcher or corrector failed.
	ErrRuleExecution = errors.New("rule execution failed")

	// ErrNoRulesFound is returned when no rule produced a candidate.
	ErrNoRulesFound = errors.New("no matching rules found")

	// ErrExecution is returned when a corrected command could not be started.
	ErrExecution = errors.New("command execution failed")
)

// Phase names the rule capability that failed.
type Phase string

const (
	PhaseMatch   Phase = "match"
	PhaseCorrect Phase = "correct"
)

// RuleError is the diagnostic recorded for a rule that failed during
// evaluation. It unwraps to ErrRuleExecution and to the underlying cause.
type RuleError struct {
	RuleID string
	Phase  Phase
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: rule %s (%s): %v", ErrRuleExecution, e.RuleID, e.Phase, e.Err)
}

func (e *RuleError) Unwrap() []error {
	return []error{ErrRuleExecution, e.Err}
}
