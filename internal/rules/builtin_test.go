package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdfix/internal/command"
)

func TestBuiltinRules(t *testing.T) {
	tests := []struct {
		name      string
		rule      Rule
		text      string
		stderr    string
		wantMatch bool
		want      []Correction
	}{
		{
			name:      "git typo with git suggestion",
			rule:      gitNotCommand(),
			text:      "git pshu origin main",
			stderr:    "git: 'pshu' is not a git command. See 'git --help'.\n\nThe most similar command is\n\tpush\n",
			wantMatch: true,
			want:      []Correction{Fix("git push origin main")},
		},
		{
			name:      "git typo with several suggestions",
			rule:      gitNotCommand(),
			text:      "git pul",
			stderr:    "git: 'pul' is not a git command. See 'git --help'.\n\nThe most similar commands are\n\tpull\n\tpush\n",
			wantMatch: true,
			want:      []Correction{Fix("git pull"), Fix("git push")},
		},
		{
			name:      "git typo ignores other programs",
			rule:      gitNotCommand(),
			text:      "hg pshu",
			stderr:    "git: 'pshu' is not a git command.",
			wantMatch: false,
		},
		{
			name:      "push without upstream",
			rule:      gitPushSetUpstream(),
			text:      "git push",
			stderr:    "fatal: The current branch feature has no upstream branch.\nTo push the current branch and set the remote as upstream, use\n\n    git push --set-upstream origin feature\n",
			wantMatch: true,
			want:      []Correction{Fix("git push --set-upstream origin feature")},
		},
		{
			name:      "rejected push",
			rule:      gitPushForce(),
			text:      "git push origin main",
			stderr:    " ! [rejected]        main -> main (non-fast-forward)\nhint: Updates were rejected because the tip of your current branch is behind",
			wantMatch: true,
			want: []Correction{{
				Text:        "git push --force-with-lease origin main",
				SideEffects: []string{"will force-push"},
			}},
		},
		{
			name:      "rejected push already forced",
			rule:      gitPushForce(),
			text:      "git push --force origin main",
			stderr:    "hint: Updates were rejected because the remote contains work",
			wantMatch: false,
		},
		{
			name:      "unknown program",
			rule:      noCommand(),
			text:      "lz -la",
			stderr:    "bash: lz: command not found",
			wantMatch: true,
			want:      []Correction{Fix("ls -la"), Fix("less -la")},
		},
		{
			name:      "python missing",
			rule:      pythonCommand(),
			text:      "python app.py --verbose",
			stderr:    "zsh: command not found: python",
			wantMatch: true,
			want:      []Correction{Fix("python3 app.py --verbose")},
		},
		{
			name:      "permission denied",
			rule:      sudo(),
			text:      "apt install vim",
			stderr:    "E: Could not open lock file /var/lib/dpkg/lock-frontend - open (13: Permission denied)",
			wantMatch: true,
			want: []Correction{{
				Text:        "sudo apt install vim",
				SideEffects: []string{"runs with elevated privileges"},
			}},
		},
		{
			name:      "already sudo",
			rule:      sudo(),
			text:      "sudo apt install vim",
			stderr:    "Permission denied",
			wantMatch: false,
		},
		{
			name:      "mkdir missing parent",
			rule:      mkdirP(),
			text:      "mkdir a/b/c",
			stderr:    "mkdir: cannot create directory 'a/b/c': No such file or directory",
			wantMatch: true,
			want:      []Correction{Fix("mkdir -p a/b/c")},
		},
		{
			name:      "mkdir already -p",
			rule:      mkdirP(),
			text:      "mkdir -p a/b/c",
			stderr:    "mkdir: a/b: No such file or directory",
			wantMatch: false,
		},
		{
			name:      "cd into missing directory",
			rule:      cdMkdir(),
			text:      "cd project",
			stderr:    "bash: cd: project: No such file or directory",
			wantMatch: true,
			want:      []Correction{Fix("mkdir -p project && cd project")},
		},
		{
			name:      "cd.. typo",
			rule:      cdParent(),
			text:      "cd..",
			wantMatch: true,
			want:      []Correction{Fix("cd ..")},
		},
		{
			name:      "cd.. with path",
			rule:      cdParent(),
			text:      "cd../src",
			wantMatch: true,
			want:      []Correction{Fix("cd ../src")},
		},
		{
			name:      "rm on directory",
			rule:      rmDir(),
			text:      "rm build",
			stderr:    "rm: cannot remove 'build': Is a directory",
			wantMatch: true,
			want: []Correction{{
				Text:        "rm -r build",
				SideEffects: []string{"removes directories recursively"},
			}},
		},
		{
			name:      "rm already recursive",
			rule:      rmDir(),
			text:      "rm -rf build",
			stderr:    "rm: build: Is a directory",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := command.New(tt.text, command.ShellBash)

			matched, err := tt.rule.Match(cmd, tt.stderr)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, matched)
			if !matched {
				return
			}

			got, err := tt.rule.Correct(cmd, tt.stderr)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Correct() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGitNotCommandFallsBackToDictionary(t *testing.T) {
	rule := gitNotCommand()
	cmd := command.New("git comit -m fix", command.ShellZsh)
	stderr := "git: 'comit' is not a git command. See 'git --help'."

	matched, err := rule.Match(cmd, stderr)
	require.NoError(t, err)
	require.True(t, matched)

	got, err := rule.Correct(cmd, stderr)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "git commit -m fix", got[0].Text)
}

func TestNoCommandFishMessage(t *testing.T) {
	rule := noCommand()
	cmd := command.New("gti status", command.ShellFish)
	stderr := "fish: Unknown command: gti"

	matched, err := rule.Match(cmd, stderr)
	require.NoError(t, err)
	require.True(t, matched)

	got, err := rule.Correct(cmd, stderr)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "git status", got[0].Text)
}

func TestGitSuggestions(t *testing.T) {
	stderr := "git: 'sta' is not a git command. See 'git --help'.\n\n" +
		"The most similar commands are\n\tstash\n\tstatus\nother trailing text\n"

	assert.Equal(t, []string{"stash", "status"}, gitSuggestions(stderr))
	assert.Empty(t, gitSuggestions("git: 'x' is not a git command."))
}

func TestCdParentRunsWithoutConfirmation(t *testing.T) {
	assert.True(t, cdParent().NoConfirm)
	assert.False(t, sudo().NoConfirm)
}

func TestSudoForShFromEnvironment(t *testing.T) {
	shell := command.DetectShell(func(k string) string {
		if k == "SHELL" {
			return "/bin/sh"
		}
		return ""
	})
	reg := NewDefaultRegistry()

	var ids []string
	for _, r := range reg.ListForShell(shell) {
		ids = append(ids, r.ID)
	}
	assert.Contains(t, ids, "sudo")
}
