package rules

import (
	"regexp"
	"strings"

	"cmdfix/internal/command"
)

var gitBrokenRe = regexp.MustCompile(`git: '([^']+)' is not a git command`)

// gitCommands is the fallback dictionary when git offers no suggestion.
var gitCommands = []string{
	"add", "am", "archive", "bisect", "blame", "branch", "checkout",
	"cherry-pick", "clean", "clone", "commit", "config", "describe", "diff",
	"fetch", "grep", "init", "log", "merge", "mv", "pull", "push", "rebase",
	"reflog", "remote", "reset", "restore", "revert", "rm", "show", "stash",
	"status", "switch", "tag", "worktree",
}

func gitNotCommand() Rule {
	return Rule{
		ID:          "git_not_command",
		Description: "Fixes mistyped git subcommands",
		Priority:    900,
		Match: func(cmd command.Command, stderr string) (bool, error) {
			return cmd.StartsWith("git") && strings.Contains(stderr, "is not a git command"), nil
		},
		Correct: func(cmd command.Command, stderr string) ([]Correction, error) {
			m := gitBrokenRe.FindStringSubmatch(stderr)
			if m == nil {
				return nil, nil
			}
			broken := m[1]

			suggestions := gitSuggestions(stderr)
			if len(suggestions) == 0 {
				suggestions = closest(broken, gitCommands, 3)
			}

			out := make([]Correction, 0, len(suggestions))
			for _, s := range suggestions {
				out = append(out, Fix(replaceArgument(cmd, broken, s)))
			}
			return out, nil
		},
	}
}

// gitSuggestions returns the indented lines git prints after
// "The most similar command(s)".
func gitSuggestions(stderr string) []string {
	var out []string
	collecting := false
	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, "most similar command") {
			collecting = true
			continue
		}
		if !collecting {
			continue
		}
		if line == "" || (line[0] != '\t' && line[0] != ' ') {
			break
		}
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func gitPushSetUpstream() Rule {
	return Rule{
		ID:          "git_push_set_upstream",
		Description: "Pushes a new branch with the upstream git suggests",
		Priority:    950,
		Match: func(cmd command.Command, stderr string) (bool, error) {
			return cmd.StartsWith("git") && cmd.ContainsArgument("push") &&
				strings.Contains(stderr, "has no upstream branch"), nil
		},
		Correct: func(_ command.Command, stderr string) ([]Correction, error) {
			for _, line := range strings.Split(stderr, "\n") {
				line = strings.TrimSpace(line)
				if strings.HasPrefix(line, "git push --set-upstream") || strings.HasPrefix(line, "git push -u") {
					return []Correction{Fix(line)}, nil
				}
			}
			return nil, nil
		},
	}
}

func gitPushForce() Rule {
	return Rule{
		ID:          "git_push_force",
		Description: "Force-pushes (with lease) after a rejected push",
		Priority:    300,
		Match: func(cmd command.Command, stderr string) (bool, error) {
			return cmd.StartsWith("git") && cmd.ContainsArgument("push") &&
				strings.Contains(stderr, "Updates were rejected") &&
				!hasAnyArgument(cmd, "-f", "--force", "--force-with-lease"), nil
		},
		Correct: func(cmd command.Command, _ string) ([]Correction, error) {
			return []Correction{{
				Text:        replaceArgument(cmd, "push", "push --force-with-lease"),
				SideEffects: []string{"will force-push"},
			}}, nil
		},
	}
}
