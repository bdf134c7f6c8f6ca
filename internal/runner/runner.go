// Package runner executes commands under the shell they were typed in.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"cmdfix/internal/command"
)

// TimeoutExitCode is reported when a command is killed for running past
// its timeout.
const TimeoutExitCode = 124

// InterruptedExitCode is reported when the context is cancelled while the
// command runs.
const InterruptedExitCode = 130

// execCommandContext is swapped out in tests.
var execCommandContext = exec.CommandContext

// Options configures a Runner.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer // receives a copy of the command's stdout
	Stderr io.Writer // receives a copy of the command's stderr
	// Timeout kills the command after this long. Zero means no limit.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Runner runs commands and reports their Result. A non-zero exit is data,
// and so is a command killed by its timeout or a cancelled context; an
// error means the command could not be started.
type Runner struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Runner.
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, logger: logger}
}

// Argv returns the program and arguments that run text under shell.
func Argv(shell command.Shell, text string) (string, []string) {
	switch shell {
	case command.ShellBash, command.ShellZsh, command.ShellFish:
		return string(shell), []string{"-c", text}
	case command.ShellPowerShell:
		program := "pwsh"
		if runtime.GOOS == "windows" {
			program = "powershell"
		}
		return program, []string{"-NoProfile", "-Command", text}
	case command.ShellCmd:
		return "cmd", []string{"/C", text}
	default:
		return "sh", []string{"-c", text}
	}
}

// Execute runs cmd in its working directory with its environment layered
// over the current process environment.
func (r *Runner) Execute(ctx context.Context, cmd command.Command) (command.Result, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	program, args := Argv(cmd.Shell(), cmd.Text())
	c := execCommandContext(ctx, program, args...)
	c.Dir = cmd.Cwd()
	c.Env = mergeEnv(os.Environ(), cmd.Environ())
	c.WaitDelay = time.Second
	c.Stdin = r.opts.Stdin

	var stdout, stderr bytes.Buffer
	c.Stdout = tee(&stdout, r.opts.Stdout)
	c.Stderr = tee(&stderr, r.opts.Stderr)

	r.logger.Debug("running command",
		zap.String("program", program),
		zap.String("command", cmd.Text()),
		zap.String("cwd", c.Dir))

	start := time.Now()
	err := c.Run()
	result := command.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		result.Success = true
		return result, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return result, fmt.Errorf("%w: %s: %w", command.ErrExecution, program, err)
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.ExitCode = TimeoutExitCode
	case ctx.Err() != nil:
		// It started, so whatever it did has happened.
		result.ExitCode = InterruptedExitCode
	default:
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			result.ExitCode = 1
		}
	}

	r.logger.Debug("command failed",
		zap.String("command", cmd.Text()),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// Capture re-runs cmd silently to collect its output, killing it after
// timeout. Stdin is not connected.
func (r *Runner) Capture(ctx context.Context, cmd command.Command, timeout time.Duration) (command.Result, error) {
	quiet := New(Options{Timeout: timeout, Logger: r.logger})
	return quiet.Execute(ctx, cmd)
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// mergeEnv returns base with overrides applied. Override keys are appended
// in sorted order.
func mergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		out = append(out, k+"="+overrides[k])
	}
	return out
}
