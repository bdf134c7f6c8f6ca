package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cmdfix/internal/command"
	"cmdfix/internal/dispatch"
	"cmdfix/internal/fix"
	"cmdfix/internal/shelllog"
)

// watchShellLog prints suggestions for every failed command appended to the
// log at path until ctx is cancelled.
func (a *app) watchShellLog(ctx context.Context, path string) error {
	reg, err := a.buildRegistry()
	if err != nil {
		return err
	}
	fixer := fix.NewFixer(fix.Deps{
		Evaluator:   dispatch.New(reg, dispatch.Options{Workers: a.cfg.Workers, Logger: a.logger}),
		SideEffects: a.cfg,
		Logger:      a.logger,
	})

	w, err := shelllog.NewWatcher(path, a.logger)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	w.Start()
	defer w.Close()

	a.logger.Debug("watching shell log", zap.String("path", w.Path()))
	fallback := a.shellName()

	for {
		select {
		case <-ctx.Done():
			return nil

		case rec := <-w.Events:
			if !rec.Failed() {
				continue
			}
			a.suggestFor(ctx, fixer, rec.ToCommand(fallback), rec.Stderr)

		case err := <-w.Errors:
			a.logger.Warn("shell log watch error", zap.Error(err))
		}
	}
}

func (a *app) suggestFor(ctx context.Context, fixer *fix.Fixer, failed command.Command, stderr string) {
	ranked, err := fixer.Suggest(ctx, failed, stderr)
	switch {
	case errors.Is(err, command.ErrNoRulesFound):
		a.logger.Debug("no suggestion", zap.String("command", failed.Trimmed()))
		return
	case err != nil:
		a.logger.Warn("suggest failed", zap.String("command", failed.Trimmed()), zap.Error(err))
		return
	}
	fmt.Fprintf(a.streams.Out, "%s → %s\n", failed.Trimmed(), ranked[0].Text)
}
