package rules

import (
	"slices"

	"cmdfix/internal/command"
)

// knownPrograms is the dictionary for the no_command rule. Order is the
// tie-break between equally similar programs.
var knownPrograms = []string{
	"ls", "cd", "cp", "mv", "rm", "mkdir", "rmdir", "cat", "less", "head",
	"tail", "grep", "find", "sed", "awk", "sort", "uniq", "wc", "diff",
	"echo", "touch", "chmod", "chown", "sudo", "which", "man", "ps", "kill",
	"top", "df", "du", "tar", "curl", "wget", "ssh", "scp", "ping", "vim",
	"nano", "git", "make", "go", "cargo", "python", "python3", "pip", "node",
	"npm", "yarn", "docker", "kubectl", "apt", "brew", "gcc", "java", "ruby",
}

var notFoundMessages = []string{
	"command not found",
	"Unknown command",
	"is not recognized as an internal or external command",
	"is not recognized as the name of a cmdlet",
}

var permissionMessages = []string{
	"permission denied",
	"eacces",
	"operation not permitted",
	"must be run as root",
	"you need to be root",
	"are you root",
	"requires root privileges",
	"only root can",
}

func noCommand() Rule {
	return Rule{
		ID:          "no_command",
		Description: "Replaces an unknown program with the closest known one",
		Priority:    700,
		Match: func(cmd command.Command, stderr string) (bool, error) {
			return cmd.Program() != "" && containsAny(stderr, notFoundMessages...), nil
		},
		Correct: func(cmd command.Command, _ string) ([]Correction, error) {
			var out []Correction
			for _, p := range closest(cmd.Program(), knownPrograms, 3) {
				out = append(out, Fix(replaceProgram(cmd, p)))
			}
			return out, nil
		},
	}
}

func pythonCommand() Rule {
	return Rule{
		ID:          "python_command",
		Description: "Uses python3 where python is missing",
		Priority:    650,
		Match: func(cmd command.Command, stderr string) (bool, error) {
			return cmd.StartsWith("python") && containsAny(stderr, "not found", "is not recognized"), nil
		},
		Correct: func(cmd command.Command, _ string) ([]Correction, error) {
			return []Correction{Fix(replaceProgram(cmd, "python3"))}, nil
		},
	}
}

func sudo() Rule {
	return Rule{
		ID:          "sudo",
		Description: "Reruns the command with sudo",
		Priority:    600,
		Shells:      slices.Clone(posixShells),
		Match: func(cmd command.Command, stderr string) (bool, error) {
			return !cmd.IsEmpty() && !cmd.StartsWith("sudo") && containsAny(stderr, permissionMessages...), nil
		},
		Correct: func(cmd command.Command, _ string) ([]Correction, error) {
			return []Correction{{
				Text:        "sudo " + cmd.Trimmed(),
				SideEffects: []string{"runs with elevated privileges"},
			}}, nil
		},
	}
}
