// Package dispatch evaluates registered rules against a failed command.
package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cmdfix/internal/command"
	"cmdfix/internal/rules"
)

// Options configures a Dispatcher.
type Options struct {
	// Workers bounds concurrent rule evaluations. Zero means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// Evaluation is the result of one dispatch: candidates in registration
// order and a diagnostic for every rule that failed.
type Evaluation struct {
	Candidates  []command.CorrectedCommand
	Diagnostics []*command.RuleError
}

// Empty reports whether no rule produced a candidate.
func (e Evaluation) Empty() bool {
	return len(e.Candidates) == 0
}

// Dispatcher runs every applicable rule concurrently. A failing or panicking
// rule becomes a diagnostic and never affects the other rules.
type Dispatcher struct {
	registry    *rules.Registry
	workers     int
	logger      *zap.Logger
	evaluations atomic.Int64
}

// New creates a Dispatcher over registry.
func New(registry *rules.Registry, opts Options) *Dispatcher {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry: registry,
		workers:  workers,
		logger:   logger,
	}
}

// Evaluations returns how many times Evaluate has run.
func (d *Dispatcher) Evaluations() int64 {
	return d.evaluations.Load()
}

type outcome struct {
	candidates []command.CorrectedCommand
	diag       *command.RuleError
}

// Evaluate runs the rules for shell against cmd and stderr. It waits for
// every rule before returning. The only error is the context's.
func (d *Dispatcher) Evaluate(ctx context.Context, cmd command.Command, stderr string, shell command.Shell) (Evaluation, error) {
	d.evaluations.Add(1)

	snapshot := d.registry.ListForShell(shell)
	outcomes := make([]outcome, len(snapshot))

	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, rule := range snapshot {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = evaluateRule(rule, cmd, stderr)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}

	var eval Evaluation
	for i, o := range outcomes {
		if o.diag != nil {
			d.logger.Warn("rule failed",
				zap.String("rule", o.diag.RuleID),
				zap.String("phase", string(o.diag.Phase)),
				zap.Error(o.diag.Err))
			eval.Diagnostics = append(eval.Diagnostics, o.diag)
			continue
		}
		if len(o.candidates) > 0 {
			d.logger.Debug("rule matched",
				zap.String("rule", snapshot[i].ID),
				zap.Int("candidates", len(o.candidates)))
		}
		eval.Candidates = append(eval.Candidates, o.candidates...)
	}

	d.logger.Debug("evaluated rules",
		zap.String("shell", shell.String()),
		zap.Int("rules", len(snapshot)),
		zap.Int("candidates", len(eval.Candidates)),
		zap.Int("failed", len(eval.Diagnostics)))

	return eval, nil
}

// evaluateRule runs one rule behind a recover boundary.
func evaluateRule(rule rules.Rule, cmd command.Command, stderr string) (out outcome) {
	phase := command.PhaseMatch
	defer func() {
		if r := recover(); r != nil {
			out = outcome{diag: &command.RuleError{
				RuleID: rule.ID,
				Phase:  phase,
				Err:    fmt.Errorf("panic: %v", r),
			}}
		}
	}()

	matched, err := rule.Match(cmd, stderr)
	if err != nil {
		return outcome{diag: &command.RuleError{RuleID: rule.ID, Phase: phase, Err: err}}
	}
	if !matched {
		return outcome{}
	}

	phase = command.PhaseCorrect
	corrections, err := rule.Correct(cmd, stderr)
	if err != nil {
		return outcome{diag: &command.RuleError{RuleID: rule.ID, Phase: phase, Err: err}}
	}

	for _, c := range corrections {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		candidate := command.NewCorrected(c.Text, cmd, rule.Priority).WithConfirmation(!rule.NoConfirm)
		candidate.SideEffects = slices.Clone(c.SideEffects)
		candidate.Rules = []string{rule.ID}
		out.candidates = append(out.candidates, candidate)
	}
	return out
}
