package fix

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"cmdfix/internal/command"
	"cmdfix/internal/rank"
)

// Fixer is the entry point for correcting one failed command.
type Fixer struct {
	deps Deps
}

// NewFixer creates a Fixer. deps.Evaluator is required; Confirmer and
// Executor are only needed by Fix.
func NewFixer(deps Deps) *Fixer {
	return &Fixer{deps: deps}
}

// Suggest validates cmd and returns its ranked candidates without running
// anything. An empty result is reported as command.ErrNoRulesFound.
func (f *Fixer) Suggest(ctx context.Context, cmd command.Command, stderr string) ([]command.CorrectedCommand, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if _, err := cmd.Parse(); err != nil {
		return nil, err
	}
	if f.deps.Evaluator == nil {
		return nil, errors.New("fix: evaluator is required")
	}

	ranked, err := plan(ctx, f.deps, cmd, stderr)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w for %q", command.ErrNoRulesFound, cmd.Trimmed())
	}
	return ranked, nil
}

// Fix suggests candidates for cmd and drives the machine to a terminal
// state.
func (f *Fixer) Fix(ctx context.Context, cmd command.Command, stderr string, opts Options) (Outcome, error) {
	ranked, err := f.Suggest(ctx, cmd, stderr)
	if err != nil {
		return Outcome{}, err
	}

	m, err := NewMachine(NewSession(cmd, ranked, 0), opts, f.deps)
	if err != nil {
		return Outcome{}, err
	}
	return m.Run(ctx)
}

// plan evaluates, ranks and annotates candidates for cmd.
func plan(ctx context.Context, deps Deps, cmd command.Command, stderr string) ([]command.CorrectedCommand, error) {
	eval, err := deps.Evaluator.Evaluate(ctx, cmd, stderr, cmd.Shell())
	if err != nil {
		return nil, err
	}

	ranked := rank.Rank(eval.Candidates)
	if deps.SideEffects != nil {
		for i := range ranked {
			ranked[i] = annotate(ranked[i], deps.SideEffects)
		}
	}
	return ranked, nil
}

// annotate appends configured warnings to c. A candidate with a configured
// warning always requires confirmation.
func annotate(c command.CorrectedCommand, src SideEffectSource) command.CorrectedCommand {
	extra := src.SideEffectsFor(c.Text)
	if len(extra) == 0 {
		return c
	}
	for _, w := range extra {
		if !slices.Contains(c.SideEffects, w) {
			c.SideEffects = append(c.SideEffects, w)
		}
	}
	c.RequiresConfirmation = true
	return c
}
