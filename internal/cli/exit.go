package cli

import (
	"context"
	"errors"

	"cmdfix/internal/command"
	"cmdfix/internal/fix"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitNoRules   = 3
	ExitExhausted = 4
	ExitSpawn     = 126
	ExitAborted   = 130
)

// exitError carries an exit code out of a cobra command. A nil err means
// there is nothing to print.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// usageError marks flag, argument and configuration mistakes.
func usageError(err error) error {
	return &exitError{code: ExitUsage, err: err}
}

// ExitCode maps an error returned by the root command to a process exit
// code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *exitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.code
	case errors.Is(err, command.ErrValidation), errors.Is(err, command.ErrParse):
		return ExitUsage
	case errors.Is(err, command.ErrNoRulesFound):
		return ExitNoRules
	case errors.Is(err, context.Canceled):
		return ExitAborted
	case errors.Is(err, command.ErrExecution):
		return ExitSpawn
	default:
		return ExitFailure
	}
}

// outcomeCode maps a terminal outcome to an exit code.
func outcomeCode(o fix.Outcome) int {
	switch o.Kind {
	case fix.OutcomeDone:
		if o.Result.Success {
			return ExitOK
		}
		if o.Result.ExitCode > 0 {
			return o.Result.ExitCode
		}
		return ExitFailure
	case fix.OutcomeExhausted:
		return ExitExhausted
	default:
		return ExitAborted
	}
}
