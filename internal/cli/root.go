// Package cli implements the cmdfix command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"cmdfix/internal/alias"
	"cmdfix/internal/command"
	"cmdfix/internal/config"
	"cmdfix/internal/dispatch"
	"cmdfix/internal/fix"
	"cmdfix/internal/rules"
	"cmdfix/internal/runner"
	"cmdfix/internal/shelllog"
)

// historyEnv carries the failed command when no arguments are given. The
// second name is what existing thefuck aliases export.
var historyEnv = []string{"CMDFIX_HISTORY", "TF_HISTORY"}

// Streams are the process's standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// fixFlags are the root command's flags
type fixFlags struct {
	alias       string
	shellLogger string
	instant     bool
	debug       bool
	yes         bool
	repeat      bool
	stderr      string
	shell       string
	configPath  string
	print       bool
}

// app holds everything one invocation needs. The function fields are
// replaced in tests.
type app struct {
	streams Streams
	getenv  func(string) string
	getwd   func() (string, error)
	flags   fixFlags

	cfg    *config.Config
	logger *zap.Logger

	newConfirmer func(cfg *config.Config) fix.Confirmer
	newExecutor  func(cfg *config.Config) fix.Executor
	capture      func(ctx context.Context, cmd command.Command, timeout time.Duration) (command.Result, error)
	checkLatest  func(current string) (latestInfo, error)
}

func newApp(streams Streams) *app {
	a := &app{
		streams: streams,
		getenv:  os.Getenv,
		getwd:   os.Getwd,
		logger:  zap.NewNop(),
	}
	a.newConfirmer = a.defaultConfirmer
	a.newExecutor = a.defaultExecutor
	a.capture = a.defaultCapture
	a.checkLatest = checkGithubRelease
	return a
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, streams Streams) int {
	return newApp(streams).execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	_ = a.logger.Sync()
	if err != nil && err.Error() != "" {
		fmt.Fprintln(a.streams.Err, "cmdfix:", err)
	}
	return ExitCode(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cmdfix [flags] [--] [failed command...]",
		Short: "Correct the previous console command",
		Long: `cmdfix suggests corrections for a command that just failed and runs the
one you pick.

Set it up with the alias printed by "cmdfix --alias". Without arguments the
failed command is read from $CMDFIX_HISTORY.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: a.runRoot,
	}
	root.SetIn(a.streams.In)
	root.SetOut(a.streams.Out)
	root.SetErr(a.streams.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	bindFixFlags(root.Flags(), &a.flags)
	root.PersistentFlags().BoolVarP(&a.flags.debug, "debug", "d", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.flags.configPath, "config", "", "config file path")

	root.AddCommand(a.recordCommand(), a.rulesCommand(), a.versionCommand())
	return root
}

func bindFixFlags(fs *pflag.FlagSet, f *fixFlags) {
	// Everything after the failed command belongs to it
	fs.SetInterspersed(false)

	fs.StringVarP(&f.alias, "alias", "a", "", "print the alias for the current (or given) shell")
	fs.Lookup("alias").NoOptDefVal = "auto"
	fs.StringVarP(&f.shellLogger, "shell-logger", "l", "", "watch a shell log and print suggestions for new failures")
	fs.BoolVar(&f.instant, "enable-experimental-instant-mode", false, "read output from the shell log instead of re-running")
	fs.BoolVarP(&f.yes, "yes", "y", false, "execute the first suggestion without confirmation")
	fs.BoolVarP(&f.repeat, "repeat", "r", false, "try again if the corrected command fails")
	fs.StringVar(&f.stderr, "stderr", "", "captured output of the failed command")
	fs.StringVar(&f.shell, "shell", "", "shell the command was typed in (default: detected)")
	fs.BoolVar(&f.print, "print", false, "print ranked suggestions and exit")
}

// setup loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if a.flags.configPath != "" {
		cfg, err = config.Load(a.flags.configPath)
	} else {
		cfg, err = config.LoadFromDefaultPath()
	}
	if err != nil {
		return usageError(err)
	}
	a.cfg = cfg
	a.logger = newLogger(a.flags.debug || cfg.Debug, a.streams.Err)
	a.logger.Debug("config loaded", zap.String("command", cmd.Name()), zap.String("ui", cfg.UI))
	return nil
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	switch {
	case cmd.Flags().Changed("alias"):
		return a.printAlias()
	case a.flags.shellLogger != "":
		return a.watchShellLog(ctx, a.flags.shellLogger)
	}

	failed, err := a.failedCommand(args)
	if err != nil {
		return err
	}

	stderr, failed := a.failureOutput(ctx, cmd, failed)

	reg, err := a.buildRegistry()
	if err != nil {
		return err
	}
	deps := fix.Deps{
		Evaluator:   dispatch.New(reg, dispatch.Options{Workers: a.cfg.Workers, Logger: a.logger}),
		SideEffects: a.cfg,
		Logger:      a.logger,
	}

	if a.flags.print {
		return a.printSuggestions(ctx, fix.NewFixer(deps), failed, stderr)
	}

	deps.Confirmer = a.newConfirmer(a.cfg)
	if c, ok := deps.Confirmer.(io.Closer); ok {
		defer c.Close()
	}
	deps.Executor = a.newExecutor(a.cfg)
	opts := fix.Options{
		AssumeYes: a.flags.yes || !a.cfg.RequireConfirmation,
		Repeat:    a.flags.repeat || a.cfg.Repeat,
	}

	outcome, err := fix.NewFixer(deps).Fix(ctx, failed, stderr, opts)
	if err != nil {
		return err
	}
	a.logger.Debug("fix finished", zap.Stringer("outcome", outcome))

	if code := outcomeCode(outcome); code != ExitOK {
		var msg error
		switch outcome.Kind {
		case fix.OutcomeExhausted:
			msg = errors.New("no more suggestions")
		case fix.OutcomeAborted:
			msg = errors.New("aborted")
		}
		return &exitError{code: code, err: msg}
	}
	return nil
}

// shellName returns the shell from --shell or the environment.
func (a *app) shellName() command.Shell {
	if a.flags.shell != "" {
		return command.ParseShell(a.flags.shell)
	}
	return command.DetectShell(a.getenv)
}

// failedCommand builds the command to correct from the arguments or the
// history variable.
func (a *app) failedCommand(args []string) (command.Command, error) {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		for _, key := range historyEnv {
			if v := a.getenv(key); strings.TrimSpace(v) != "" {
				text = v
				break
			}
		}
	}

	cmd := command.New(text, a.shellName())
	if cwd, err := a.getwd(); err == nil {
		cmd = cmd.WithCwd(cwd)
	}
	return cmd, nil
}

// failureOutput returns the failed command's output. --stderr wins; in
// instant mode the shell log is used when its last record is this command;
// otherwise the command is re-run.
func (a *app) failureOutput(ctx context.Context, cmd *cobra.Command, failed command.Command) (string, command.Command) {
	if cmd.Flags().Changed("stderr") {
		return a.flags.stderr, failed
	}

	if a.flags.instant || a.cfg.InstantMode {
		rec, err := shelllog.Last(a.cfg.ShellLog)
		switch {
		case err != nil:
			a.logger.Debug("shell log unavailable", zap.String("path", a.cfg.ShellLog), zap.Error(err))
		case strings.TrimSpace(rec.Command) == failed.Trimmed():
			if rec.Cwd != "" {
				failed = failed.WithCwd(rec.Cwd)
			}
			return rec.Stderr, failed
		default:
			a.logger.Debug("shell log is behind", zap.String("last", rec.Command))
		}
	}

	if a.cfg.WaitCommand <= 0 || failed.IsEmpty() {
		return "", failed
	}
	res, err := a.capture(ctx, failed, a.cfg.WaitCommandDuration())
	if err != nil {
		a.logger.Warn("could not re-run command", zap.String("command", failed.Trimmed()), zap.Error(err))
		return "", failed
	}
	if strings.TrimSpace(res.Stderr) == "" {
		return res.Stdout, failed
	}
	return res.Stderr, failed
}

// buildRegistry registers the built-in rules with configured priorities
// and exclusions.
func (a *app) buildRegistry() (*rules.Registry, error) {
	reg := rules.NewRegistry()
	for _, r := range rules.Builtins() {
		if p, ok := a.cfg.Priority[r.ID]; ok {
			r.Priority = p
		}
		if err := reg.Register(r); err != nil {
			return nil, err
		}
	}
	for _, id := range a.cfg.ExcludeRules {
		if err := reg.Disable(id); err != nil {
			a.logger.Warn("cannot exclude rule", zap.String("rule", id), zap.Error(err))
		}
	}
	return reg, nil
}

func (a *app) printSuggestions(ctx context.Context, f *fix.Fixer, failed command.Command, stderr string) error {
	ranked, err := f.Suggest(ctx, failed, stderr)
	if err != nil {
		return err
	}
	for _, c := range ranked {
		line := c.Text
		if len(c.SideEffects) > 0 {
			line += "\t# " + strings.Join(c.SideEffects, ", ")
		}
		fmt.Fprintln(a.streams.Out, line)
	}
	return nil
}

func (a *app) printAlias() error {
	shell := a.shellName()
	if a.flags.alias != "auto" {
		shell = command.ParseShell(a.flags.alias)
	}

	snippet, err := alias.Generate(shell, alias.Options{InstantMode: a.flags.instant || a.cfg.InstantMode})
	if err != nil {
		return usageError(err)
	}
	fmt.Fprint(a.streams.Out, snippet)
	return nil
}

func (a *app) defaultCapture(ctx context.Context, cmd command.Command, timeout time.Duration) (command.Result, error) {
	return runner.New(runner.Options{Logger: a.logger}).Capture(ctx, cmd, timeout)
}

func (a *app) defaultExecutor(cfg *config.Config) fix.Executor {
	return runner.New(runner.Options{
		Stdin:   a.streams.In,
		Stdout:  a.streams.Out,
		Stderr:  a.streams.Err,
		Timeout: cfg.GetExecutionTimeout(),
		Logger:  a.logger,
	})
}
