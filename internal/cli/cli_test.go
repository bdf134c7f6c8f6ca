package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdfix/internal/command"
	"cmdfix/internal/config"
	"cmdfix/internal/fix"
	"cmdfix/internal/shelllog"
)

const gitPshuStderr = `git: 'pshu' is not a git command. See 'git --help'.

The most similar command is
	push
`

// syncBuffer is a bytes.Buffer safe for the watch test's concurrent use
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type harness struct {
	app      *app
	out      *syncBuffer
	errOut   *syncBuffer
	env      map[string]string
	config   string
	prompts  []fix.Prompt
	answers  []fix.Decision
	executed []string
	results  []command.Result
	captured []time.Duration
	capture  command.Result
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		out:    &syncBuffer{},
		errOut: &syncBuffer{},
		env:    map[string]string{"SHELL": "/bin/bash"},
		config: filepath.Join(t.TempDir(), "config.yaml"),
	}
	a := newApp(Streams{In: strings.NewReader(""), Out: h.out, Err: h.errOut})
	a.getenv = func(k string) string { return h.env[k] }
	a.getwd = func() (string, error) { return "/work", nil }
	a.newConfirmer = func(*config.Config) fix.Confirmer {
		return fix.ConfirmerFunc(func(_ context.Context, p fix.Prompt) (fix.Decision, error) {
			h.prompts = append(h.prompts, p)
			if len(h.answers) == 0 {
				t.Fatalf("unexpected prompt for %q", p.Candidate.Text)
			}
			d := h.answers[0]
			h.answers = h.answers[1:]
			return d, nil
		})
	}
	a.newExecutor = func(*config.Config) fix.Executor {
		return fix.ExecutorFunc(func(_ context.Context, cmd command.Command) (command.Result, error) {
			h.executed = append(h.executed, cmd.Text())
			if len(h.results) == 0 {
				return command.Succeeded(""), nil
			}
			r := h.results[0]
			h.results = h.results[1:]
			return r, nil
		})
	}
	a.capture = func(_ context.Context, _ command.Command, timeout time.Duration) (command.Result, error) {
		h.captured = append(h.captured, timeout)
		return h.capture, nil
	}
	h.app = a
	return h
}

func (h *harness) writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(h.config, []byte(content), 0o600))
}

func (h *harness) run(args ...string) int {
	return h.app.execute(context.Background(), append([]string{"--config", h.config}, args...))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"validation", fmt.Errorf("%w: empty", command.ErrValidation), ExitUsage},
		{"parse", fmt.Errorf("%w: quote", command.ErrParse), ExitUsage},
		{"no rules", fmt.Errorf("%w for %q", command.ErrNoRulesFound, "ls"), ExitNoRules},
		{"spawn", fmt.Errorf("%w: sh: not found", command.ErrExecution), ExitSpawn},
		{"cancelled", context.Canceled, ExitAborted},
		{"cancelled before start", fmt.Errorf("%w: sh: %w", command.ErrExecution, context.Canceled), ExitAborted},
		{"usage", usageError(errors.New("bad flag")), ExitUsage},
		{"explicit", &exitError{code: 42}, 42},
		{"other", errors.New("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestOutcomeCode(t *testing.T) {
	assert.Equal(t, ExitOK, outcomeCode(fix.Outcome{Kind: fix.OutcomeDone, Result: command.Succeeded("")}))
	assert.Equal(t, 7, outcomeCode(fix.Outcome{Kind: fix.OutcomeDone, Result: command.Failed(7, "")}))
	assert.Equal(t, ExitFailure, outcomeCode(fix.Outcome{Kind: fix.OutcomeDone, Result: command.Result{}}))
	assert.Equal(t, ExitExhausted, outcomeCode(fix.Outcome{Kind: fix.OutcomeExhausted}))
	assert.Equal(t, ExitAborted, outcomeCode(fix.Outcome{Kind: fix.OutcomeAborted}))
}

func TestPrintSuggestions(t *testing.T) {
	h := newHarness(t)
	code := h.run("--print", "--stderr", gitPshuStderr, "git", "pshu")

	require.Equal(t, ExitOK, code, h.errOut.String())
	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "git push"), lines[0])
	assert.Contains(t, lines[0], "changes a remote repository")
	assert.Empty(t, h.executed)
}

func TestFixAccept(t *testing.T) {
	h := newHarness(t)
	h.answers = []fix.Decision{fix.Accept}

	code := h.run("--stderr", gitPshuStderr, "git", "pshu")
	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.Equal(t, []string{"git push"}, h.executed)
	require.Len(t, h.prompts, 1)
	assert.Contains(t, h.prompts[0].Candidate.SideEffects, "changes a remote repository")
}

func TestFixPassesCommandExitCode(t *testing.T) {
	h := newHarness(t)
	h.answers = []fix.Decision{fix.Accept}
	h.results = []command.Result{command.Failed(7, "rejected")}

	assert.Equal(t, 7, h.run("--stderr", gitPshuStderr, "git", "pshu"))
}

func TestFixSkipAndAbort(t *testing.T) {
	h := newHarness(t)
	h.answers = []fix.Decision{fix.Skip}
	assert.Equal(t, ExitExhausted, h.run("--stderr", gitPshuStderr, "git", "pshu"))
	assert.Empty(t, h.executed)

	h = newHarness(t)
	h.answers = []fix.Decision{fix.Abort}
	assert.Equal(t, ExitAborted, h.run("--stderr", gitPshuStderr, "git", "pshu"))
	assert.Contains(t, h.errOut.String(), "aborted")
}

func TestFixPipedAnswersAcrossRepeat(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "ui: plain\n")
	h.app.streams.In = strings.NewReader("y\ny\n")
	h.app.newConfirmer = h.app.defaultConfirmer
	h.results = []command.Result{
		command.Failed(128, "fatal: The current branch feature has no upstream branch.\n"+
			"To push the current branch and set the remote as upstream, use\n\n"+
			"    git push --set-upstream origin feature\n"),
		command.Succeeded(""),
	}

	assert.Equal(t, ExitOK, h.run("-r", "--stderr", gitPshuStderr, "git", "pshu"))
	assert.Equal(t, []string{"git push", "git push --set-upstream origin feature"}, h.executed)
	assert.Contains(t, h.errOut.String(), "git push --set-upstream origin feature")
}

func TestDebugLogsEachTransitionOnce(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ExitOK, h.run("-d", "-y", "--stderr", gitPshuStderr, "git", "pshu"))

	// presenting -> executing -> done
	assert.Equal(t, 2, strings.Count(h.errOut.String(), "transition"), h.errOut.String())
}

func TestFixAssumeYes(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ExitOK, h.run("-y", "--stderr", gitPshuStderr, "git", "pshu"))
	assert.Equal(t, []string{"git push"}, h.executed)
	assert.Empty(t, h.prompts)

	h = newHarness(t)
	h.writeConfig(t, "require_confirmation: false\n")
	assert.Equal(t, ExitOK, h.run("--stderr", gitPshuStderr, "git", "pshu"))
	assert.Empty(t, h.prompts)
}

func TestFixFromHistory(t *testing.T) {
	h := newHarness(t)
	h.env["TF_HISTORY"] = "cd.."

	assert.Equal(t, ExitOK, h.run("--stderr", ""))
	assert.Equal(t, []string{"cd .."}, h.executed, "cd_parent runs without confirmation")
}

func TestFixErrors(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ExitUsage, h.run("--stderr", ""), "empty command")
	assert.Contains(t, h.errOut.String(), "validation")

	h = newHarness(t)
	assert.Equal(t, ExitNoRules, h.run("--stderr", "", "echo", "hi"))

	h = newHarness(t)
	assert.Equal(t, ExitUsage, h.run("--no-such-flag"))

	h = newHarness(t)
	h.writeConfig(t, "ui: fancy\n")
	assert.Equal(t, ExitUsage, h.run("--print", "ls"))
}

func TestFlagsAfterCommandBelongToIt(t *testing.T) {
	h := newHarness(t)
	h.capture = command.Failed(1, "rm: cannot remove 'build': Is a directory")

	code := h.run("--print", "rm", "-f", "build")
	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.Contains(t, h.out.String(), "rm -r -f build")
}

func TestCaptureRerunsCommand(t *testing.T) {
	h := newHarness(t)
	h.capture = command.Failed(1, gitPshuStderr)
	h.writeConfig(t, "wait_command: 2\n")

	require.Equal(t, ExitOK, h.run("--print", "git", "pshu"), h.errOut.String())
	assert.Equal(t, []time.Duration{2 * time.Second}, h.captured)
	assert.Contains(t, h.out.String(), "git push")
}

func TestCaptureDisabled(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "wait_command: 0\n")

	assert.Equal(t, ExitNoRules, h.run("--print", "git", "pshu"))
	assert.Empty(t, h.captured)
}

func TestInstantModeReadsShellLog(t *testing.T) {
	h := newHarness(t)
	logPath := filepath.Join(t.TempDir(), "shell.log")
	require.NoError(t, shelllog.Append(logPath, shelllog.Record{Command: "git pshu", ExitCode: 1, Stderr: gitPshuStderr}))
	h.writeConfig(t, "instant_mode: true\nshell_log: "+logPath+"\n")

	require.Equal(t, ExitOK, h.run("--print", "git", "pshu"), h.errOut.String())
	assert.Contains(t, h.out.String(), "git push")
	assert.Empty(t, h.captured, "output came from the shell log")
}

func TestInstantModeStaleLogFallsBack(t *testing.T) {
	h := newHarness(t)
	logPath := filepath.Join(t.TempDir(), "shell.log")
	require.NoError(t, shelllog.Append(logPath, shelllog.Record{Command: "ls", ExitCode: 2}))
	h.writeConfig(t, "shell_log: "+logPath+"\n")
	h.capture = command.Failed(1, gitPshuStderr)

	require.Equal(t, ExitOK, h.run("--enable-experimental-instant-mode", "--print", "git", "pshu"), h.errOut.String())
	assert.Len(t, h.captured, 1)
}

func TestConfigExcludesAndPriorities(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "exclude_rules: [git_not_command]\n")
	assert.Equal(t, ExitNoRules, h.run("--print", "--stderr", gitPshuStderr, "git", "pshu"))

	h = newHarness(t)
	h.writeConfig(t, "priority:\n  python_command: 5000\n")
	code := h.run("--print", "--stderr", "bash: python: command not found", "python", "app.py")
	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.True(t, strings.HasPrefix(h.out.String(), "python3 app.py"), h.out.String())
}

func TestAlias(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitOK, h.run("--alias=zsh"))
	assert.Contains(t, h.out.String(), "alias fuck=")
	assert.Contains(t, h.out.String(), "--shell zsh")

	h = newHarness(t)
	h.env["SHELL"] = "/usr/bin/fish"
	require.Equal(t, ExitOK, h.run("--alias"))
	assert.Contains(t, h.out.String(), "function fuck")

	h = newHarness(t)
	require.Equal(t, ExitOK, h.run("--enable-experimental-instant-mode", "--alias=bash"))
	assert.Contains(t, h.out.String(), "cmdfix record")

	h = newHarness(t)
	assert.Equal(t, ExitUsage, h.run("--alias=cmd"))
}

func TestRecordCommand(t *testing.T) {
	h := newHarness(t)
	logPath := filepath.Join(t.TempDir(), "log", "shell.log")

	code := h.run("record", "--log", logPath, "--command", "git pshu", "--exit-code", "1", "--stderr", "oops", "--cwd", "/src", "--shell", "zsh")
	require.Equal(t, ExitOK, code, h.errOut.String())

	rec, err := shelllog.Last(logPath)
	require.NoError(t, err)
	assert.Equal(t, "git pshu", rec.Command)
	assert.Equal(t, 1, rec.ExitCode)
	assert.Equal(t, "oops", rec.Stderr)
	assert.Equal(t, "/src", rec.Cwd)
	assert.Equal(t, "zsh", rec.Shell)

	h = newHarness(t)
	h.writeConfig(t, "shell_log: "+logPath+"\n")
	require.Equal(t, ExitOK, h.run("record", "--command", "lz", "--exit-code", "127"))
	rec, err = shelllog.Last(logPath)
	require.NoError(t, err)
	assert.Equal(t, "lz", rec.Command)
	assert.Equal(t, "bash", rec.Shell, "shell defaults to the detected one")
}

func TestRulesCommand(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "exclude_rules: [sudo]\n")

	require.Equal(t, ExitOK, h.run("rules"))
	out := h.out.String()
	for _, id := range []string{"cd_parent", "git_not_command", "no_command", "sudo"} {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "no")
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitOK, h.run("version", "--check"))
	assert.Contains(t, h.out.String(), "cmdfix dev")
	assert.Contains(t, h.out.String(), "skipping release check")

	old := Version
	Version = "1.0.0"
	t.Cleanup(func() { Version = old })

	h = newHarness(t)
	h.app.checkLatest = func(current string) (latestInfo, error) {
		assert.Equal(t, "1.0.0", current)
		return latestInfo{Current: "1.1.0", Outdated: true}, nil
	}
	require.Equal(t, ExitOK, h.run("version", "--check"))
	assert.Contains(t, h.out.String(), "A new version is available: 1.1.0")

	h = newHarness(t)
	h.app.checkLatest = func(string) (latestInfo, error) { return latestInfo{}, errors.New("offline") }
	assert.Equal(t, ExitFailure, h.run("version", "--check"))
	assert.Contains(t, h.errOut.String(), "offline")
}

func TestWatchShellLog(t *testing.T) {
	h := newHarness(t)
	logPath := filepath.Join(t.TempDir(), "shell.log")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- h.app.execute(ctx, []string{"--config", h.config, "-l", logPath})
	}()

	// The watcher only reports records appended after it starts
	require.Eventually(t, func() bool {
		_ = shelllog.Append(logPath, shelllog.Record{Command: "git pshu", ExitCode: 1, Stderr: gitPshuStderr})
		return strings.Contains(h.out.String(), "git pshu → git push")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, ExitOK, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
