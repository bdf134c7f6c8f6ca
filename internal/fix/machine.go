// Package fix drives the confirm, execute and repeat workflow over ranked
// candidates.
package fix

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"cmdfix/internal/command"
)

// Options are the mode flags for one fix.
type Options struct {
	// AssumeYes executes the current candidate without asking.
	AssumeYes bool
	// Repeat re-dispatches with the new stderr when an executed candidate
	// fails.
	Repeat bool
	// MaxRounds caps the number of repeat rounds. Zero means
	// DefaultMaxRounds.
	MaxRounds int
}

// DefaultMaxRounds is the repeat cap when Options.MaxRounds is zero.
const DefaultMaxRounds = 10

func (o Options) maxRounds() int {
	if o.MaxRounds > 0 {
		return o.MaxRounds
	}
	return DefaultMaxRounds
}

// Deps are the collaborators a Machine or Fixer drives. Evaluator is only
// needed for Fixer and for repeats. Logger, SideEffects and Observer are
// optional.
type Deps struct {
	Evaluator   Evaluator
	Confirmer   Confirmer
	Executor    Executor
	SideEffects SideEffectSource
	Logger      *zap.Logger
	Observer    func(Transition)
}

var errMissingCollaborator = errors.New("fix: confirmer and executor are required")

// Machine is the per-fix state machine. A candidate reaches Executing only
// after an Accept decision, unless it does not require confirmation or
// AssumeYes is set, and leaves Executing after a single executor call.
type Machine struct {
	deps    Deps
	opts    Options
	logger  *zap.Logger
	session *Session
	state   State
	// tried holds the failed command and every executed text. Repeats never
	// offer them again.
	tried map[string]struct{}
}

// NewMachine starts a machine presenting the session's first candidate.
func NewMachine(session *Session, opts Options, deps Deps) (*Machine, error) {
	if deps.Confirmer == nil || deps.Executor == nil {
		return nil, errMissingCollaborator
	}
	first, ok := session.Cursor.Current()
	if !ok {
		return nil, fmt.Errorf("%w for %q", command.ErrNoRulesFound, session.Command.Trimmed())
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		deps:    deps,
		opts:    opts,
		logger:  logger,
		session: session,
		state:   presenting(first),
		tried:   map[string]struct{}{session.Command.Trimmed(): {}},
	}, nil
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Session returns the current session. It changes after a repeat.
func (m *Machine) Session() *Session { return m.session }

// Run steps until a terminal state. A cancelled context aborts before the
// next step.
func (m *Machine) Run(ctx context.Context) (Outcome, error) {
	for m.state.Kind != StateTerminal {
		if err := ctx.Err(); err != nil {
			m.transition(terminal(Outcome{Kind: OutcomeAborted}))
			return m.state.Outcome, err
		}
		if _, err := m.Step(ctx); err != nil {
			return m.state.Outcome, err
		}
	}
	return m.state.Outcome, nil
}

// Step performs one transition and returns the new state. Stepping a
// terminal machine is a no-op.
func (m *Machine) Step(ctx context.Context) (State, error) {
	switch m.state.Kind {
	case StatePresenting:
		return m.present(), nil
	case StateAwaitingConfirmation:
		return m.confirm(ctx)
	case StateExecuting:
		return m.execute(ctx)
	default:
		return m.state, nil
	}
}

func (m *Machine) present() State {
	c := m.state.Candidate
	if !c.RequiresConfirmation || m.opts.AssumeYes {
		return m.transition(executing(c))
	}
	if len(c.SideEffects) > 0 {
		m.logger.Info("candidate has side effects",
			zap.String("session", m.session.ID),
			zap.String("command", c.Text),
			zap.Strings("side_effects", c.SideEffects))
	}
	return m.transition(awaiting(c))
}

func (m *Machine) confirm(ctx context.Context) (State, error) {
	c := m.state.Candidate
	cursor := m.session.Cursor

	decision, err := m.deps.Confirmer.Confirm(ctx, Prompt{
		Session:   m.session.ID,
		Round:     m.session.Round,
		Index:     cursor.Index(),
		Total:     cursor.Len(),
		Candidate: c.Clone(),
	})
	if err != nil {
		m.transition(terminal(Outcome{Kind: OutcomeAborted}))
		return m.state, fmt.Errorf("confirmation failed: %w", err)
	}

	m.logger.Debug("decision",
		zap.String("session", m.session.ID),
		zap.String("command", c.Text),
		zap.Stringer("decision", decision))

	switch decision {
	case Accept:
		return m.transition(executing(c)), nil
	case Skip:
		next, err := cursor.Next()
		if err != nil {
			return m.transition(terminal(Outcome{Kind: OutcomeExhausted})), nil
		}
		return m.transition(presenting(next)), nil
	case Abort:
		return m.transition(terminal(Outcome{Kind: OutcomeAborted})), nil
	default:
		m.transition(terminal(Outcome{Kind: OutcomeAborted}))
		return m.state, fmt.Errorf("unknown decision %d", int(decision))
	}
}

func (m *Machine) execute(ctx context.Context) (State, error) {
	c := m.state.Candidate
	cmd := c.Command()

	m.logger.Debug("executing",
		zap.String("session", m.session.ID),
		zap.String("command", c.Text),
		zap.Strings("rules", c.Rules))

	m.tried[cmd.Trimmed()] = struct{}{}
	result, err := m.deps.Executor.Execute(ctx, cmd)
	if err != nil {
		// The executor could not start the command.
		m.transition(terminal(Outcome{Kind: OutcomeAborted}))
		return m.state, fmt.Errorf("%w: %s: %w", command.ErrExecution, c.Text, err)
	}

	done := terminal(Outcome{Kind: OutcomeDone, Result: result, Executed: c})
	if result.Success || !m.opts.Repeat || ctx.Err() != nil {
		return m.transition(done), nil
	}

	if m.session.Round+1 > m.opts.maxRounds() {
		m.logger.Debug("repeat limit reached",
			zap.String("session", m.session.ID),
			zap.Int("round", m.session.Round))
		return m.transition(done), nil
	}

	ranked, err := plan(ctx, m.deps, cmd, result.Stderr)
	if err != nil {
		m.transition(done)
		return m.state, err
	}
	ranked = slices.DeleteFunc(ranked, func(c command.CorrectedCommand) bool {
		_, seen := m.tried[strings.TrimSpace(c.Text)]
		return seen
	})
	if len(ranked) == 0 {
		m.logger.Debug("no candidates for repeat",
			zap.String("session", m.session.ID),
			zap.String("command", c.Text))
		return m.transition(done), nil
	}

	m.session = NewSession(cmd, ranked, m.session.Round+1)
	first, _ := m.session.Cursor.Current()
	return m.transition(presenting(first)), nil
}

func (m *Machine) transition(to State) State {
	from := m.state
	m.state = to
	m.logger.Debug("transition",
		zap.String("session", m.session.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", to))
	if m.deps.Observer != nil {
		m.deps.Observer(Transition{Session: m.session.ID, From: from, To: to})
	}
	return to
}
