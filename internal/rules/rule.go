// Package rules defines correction rules and the registry that holds them.
package rules

import (
	"fmt"
	"slices"

	"cmdfix/internal/command"
)

// DefaultPriority is assigned to rules registered with a zero priority.
const DefaultPriority = 500

// MatchFunc reports whether a rule applies to a failed command.
type MatchFunc func(cmd command.Command, stderr string) (bool, error)

// CorrectFunc proposes zero or more replacement commands.
type CorrectFunc func(cmd command.Command, stderr string) ([]Correction, error)

// Correction is a single proposal from a rule's corrector.
type Correction struct {
	Text        string
	SideEffects []string
}

// Fix is shorthand for a Correction without side effects.
func Fix(text string) Correction {
	return Correction{Text: text}
}

// Rule is a named matcher and corrector pair. Match and Correct must be
// pure: they only read their arguments and may run concurrently.
type Rule struct {
	ID          string
	Description string
	// Shells limits the rule to the listed shells. Nil means every shell.
	Shells    []command.Shell
	Match     MatchFunc
	Correct   CorrectFunc
	Priority  int  // higher wins
	NoConfirm bool // candidates may run without confirmation
}

// Validate checks that the rule can be registered.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: rule ID cannot be empty", ErrInvalidRule)
	}
	if r.Match == nil {
		return fmt.Errorf("%w: rule %s has no matcher", ErrInvalidRule, r.ID)
	}
	if r.Correct == nil {
		return fmt.Errorf("%w: rule %s has no corrector", ErrInvalidRule, r.ID)
	}
	return nil
}

// AppliesTo reports whether the rule is declared for shell.
func (r Rule) AppliesTo(shell command.Shell) bool {
	return r.Shells == nil || slices.Contains(r.Shells, shell)
}

func (r Rule) clone() Rule {
	out := r
	out.Shells = slices.Clone(r.Shells)
	return out
}
