package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"cmdfix/internal/config"
	"cmdfix/internal/fix"
	"cmdfix/internal/tui"
)

// isTerminal reports whether s is an interactive terminal.
func isTerminal(s any) bool {
	f, ok := s.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// useTUI decides between the bubbletea prompt and the line prompt.
func (a *app) useTUI(cfg *config.Config) bool {
	switch cfg.UI {
	case config.UITUI:
		return true
	case config.UIPlain:
		return false
	default:
		return isTerminal(a.streams.In) && isTerminal(a.streams.Err)
	}
}

// defaultConfirmer draws prompts on stderr so stdout carries only the
// corrected command's output.
func (a *app) defaultConfirmer(cfg *config.Config) fix.Confirmer {
	styles := tui.NewStyles(cfg.Theme)
	if a.useTUI(cfg) {
		a.logger.Debug("using tui confirmer")
		return tui.NewConfirmer(styles, a.streams.In, a.streams.Err)
	}

	a.logger.Debug("using line confirmer", zap.String("ui", cfg.UI))
	in, ok := a.streams.In.(io.ReadCloser)
	if !ok {
		in = io.NopCloser(a.streams.In)
	}
	return tui.NewLineConfirmer(styles, in, a.streams.Err)
}
