package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdfix/internal/command"
)

// TestHelperProcess isn't a real test. It's used as a helper process
// for mocking exec.Command.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if d := os.Getenv("MOCK_SLEEP"); d != "" {
		dur, _ := time.ParseDuration(d)
		time.Sleep(dur)
	}
	if val := os.Getenv("MOCK_STDERR"); val != "" {
		fmt.Fprint(os.Stderr, val)
	}

	switch {
	case os.Getenv("MOCK_OUTPUT") != "":
		fmt.Fprint(os.Stdout, os.Getenv("MOCK_OUTPUT"))
	case os.Getenv("MOCK_PRINT_ENV") != "":
		fmt.Fprint(os.Stdout, os.Getenv(os.Getenv("MOCK_PRINT_ENV")))
	case os.Getenv("MOCK_PRINT_CWD") == "1":
		wd, _ := os.Getwd()
		fmt.Fprint(os.Stdout, wd)
	default:
		// Args will be [binary, -test.run=TestHelperProcess, --, command...]
		for i, arg := range os.Args {
			if arg == "--" {
				fmt.Fprint(os.Stdout, strings.Join(os.Args[i+1:], " "))
				break
			}
		}
	}

	code, _ := strconv.Atoi(os.Getenv("MOCK_EXIT_CODE"))
	os.Exit(code)
}

func fakeExecCommandContext(ctx context.Context, command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	return exec.CommandContext(ctx, os.Args[0], cs...)
}

func useHelper(t *testing.T) {
	t.Helper()
	oldExec := execCommandContext
	execCommandContext = fakeExecCommandContext
	t.Cleanup(func() { execCommandContext = oldExec })
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
}

func TestArgv(t *testing.T) {
	tests := []struct {
		shell       command.Shell
		wantProgram string
		wantArgs    []string
	}{
		{command.ShellBash, "bash", []string{"-c", "ls -la"}},
		{command.ShellZsh, "zsh", []string{"-c", "ls -la"}},
		{command.ShellFish, "fish", []string{"-c", "ls -la"}},
		{command.ShellCmd, "cmd", []string{"/C", "ls -la"}},
		{command.Shell("tcsh"), "sh", []string{"-c", "ls -la"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			program, args := Argv(tt.shell, "ls -la")
			assert.Equal(t, tt.wantProgram, program)
			assert.Equal(t, tt.wantArgs, args)
		})
	}

	_, args := Argv(command.ShellPowerShell, "Get-ChildItem")
	assert.Equal(t, []string{"-NoProfile", "-Command", "Get-ChildItem"}, args)
}

func TestExecuteSuccess(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_OUTPUT", "mocked output")

	var shown bytes.Buffer
	r := New(Options{Stdout: &shown})

	result, err := r.Execute(context.Background(), command.New("echo test", command.ShellBash))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "mocked output", result.Stdout)
	assert.Equal(t, "mocked output", shown.String())
	assert.True(t, result.Duration > 0)
}

func TestExecutePassesShellArgv(t *testing.T) {
	useHelper(t)

	result, err := New(Options{}).Execute(context.Background(), command.New("git push", command.ShellZsh))
	require.NoError(t, err)
	assert.Equal(t, "zsh -c git push", result.Stdout)
}

func TestExecuteNonZeroExitIsData(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_EXIT_CODE", "3")
	t.Setenv("MOCK_STDERR", "boom")

	var shownErr bytes.Buffer
	result, err := New(Options{Stderr: &shownErr}).Execute(context.Background(), command.New("false", command.ShellBash))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "boom", result.Stderr)
	assert.Equal(t, "boom", shownErr.String())
}

func TestExecuteAppliesEnv(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_PRINT_ENV", "CMDFIX_TEST_VALUE")
	t.Setenv("CMDFIX_TEST_VALUE", "from-process")

	cmd := command.New("env", command.ShellBash).WithEnv(map[string]string{"CMDFIX_TEST_VALUE": "from-command"})
	result, err := New(Options{}).Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "from-command", result.Stdout)
}

func TestExecuteUsesCwd(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_PRINT_CWD", "1")

	dir := t.TempDir()
	result, err := New(Options{}).Execute(context.Background(), command.New("pwd", command.ShellBash).WithCwd(dir))
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(result.Stdout)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExecuteSpawnFailure(t *testing.T) {
	oldExec := execCommandContext
	execCommandContext = func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, filepath.Join(t.TempDir(), "does-not-exist"))
	}
	t.Cleanup(func() { execCommandContext = oldExec })

	_, err := New(Options{}).Execute(context.Background(), command.New("ls", command.ShellBash))
	require.Error(t, err)
	assert.ErrorIs(t, err, command.ErrExecution)
}

func TestExecuteTimeout(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_SLEEP", "10s")

	start := time.Now()
	result, err := New(Options{Timeout: 100 * time.Millisecond}).Execute(context.Background(), command.New("sleep", command.ShellBash))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, TimeoutExitCode, result.ExitCode)
	assert.True(t, time.Since(start) < 5*time.Second)
}

func TestExecuteInterruptedIsAResult(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_SLEEP", "10s")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)
	defer cancel()

	start := time.Now()
	result, err := New(Options{}).Execute(ctx, command.New("sleep", command.ShellBash))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, InterruptedExitCode, result.ExitCode)
	assert.True(t, time.Since(start) < 5*time.Second)
}

func TestExecuteCancelledBeforeStart(t *testing.T) {
	useHelper(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Execute(ctx, command.New("ls", command.ShellBash))
	require.Error(t, err)
	assert.ErrorIs(t, err, command.ErrExecution)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCaptureCollectsStderr(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_STDERR", "git: 'pshu' is not a git command")
	t.Setenv("MOCK_EXIT_CODE", "1")

	var shown bytes.Buffer
	r := New(Options{Stdout: &shown, Stderr: &shown})
	result, err := r.Capture(context.Background(), command.New("git pshu", command.ShellBash), time.Second)
	require.NoError(t, err)

	assert.Equal(t, "git: 'pshu' is not a git command", result.Stderr)
	assert.Empty(t, shown.String())
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/usr/bin", "HOME=/home/user", "EMPTY="}
	got := mergeEnv(base, map[string]string{"HOME": "/tmp", "B": "2", "A": "1"})
	assert.Equal(t, []string{"PATH=/usr/bin", "EMPTY=", "A=1", "B=2", "HOME=/tmp"}, got)
}
