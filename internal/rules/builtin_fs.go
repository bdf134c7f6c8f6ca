package rules

import (
	"strings"

	"cmdfix/internal/command"
)

func mkdirP() Rule {
	return Rule{
		ID:          "mkdir_p",
		Description: "Creates missing parent directories",
		Priority:    800,
		Match: func(cmd command.Command, stderr string) (bool, error) {
			return cmd.StartsWith("mkdir") && cmd.HasArguments() &&
				!hasAnyArgument(cmd, "-p", "--parents") &&
				containsAny(stderr, "No such file or directory"), nil
		},
		Correct: func(cmd command.Command, _ string) ([]Correction, error) {
			return []Correction{Fix(replaceProgram(cmd, "mkdir -p"))}, nil
		},
	}
}

func cdMkdir() Rule {
	return Rule{
		ID:          "cd_mkdir",
		Description: "Creates the directory before changing into it",
		Priority:    400,
		Shells:      []command.Shell{command.ShellBash, command.ShellZsh, command.ShellFish},
		Match: func(cmd command.Command, stderr string) (bool, error) {
			return cmd.StartsWith("cd") && cmd.HasArguments() &&
				containsAny(stderr, "no such file or directory", "can't cd to", "does not exist"), nil
		},
		Correct: func(cmd command.Command, _ string) ([]Correction, error) {
			dir, _ := cmd.Argument(0)
			return []Correction{Fix("mkdir -p " + dir + " && cd " + dir)}, nil
		},
	}
}

func cdParent() Rule {
	return Rule{
		ID:          "cd_parent",
		Description: "Adds the missing space in cd..",
		Priority:    1000,
		NoConfirm:   true,
		Match: func(cmd command.Command, _ string) (bool, error) {
			return strings.HasPrefix(cmd.Program(), "cd.."), nil
		},
		Correct: func(cmd command.Command, _ string) ([]Correction, error) {
			target := strings.TrimPrefix(cmd.Program(), "cd")
			return []Correction{Fix(replaceProgram(cmd, "cd "+target))}, nil
		},
	}
}

func rmDir() Rule {
	return Rule{
		ID:          "rm_dir",
		Description: "Removes directories recursively",
		Priority:    500,
		Match: func(cmd command.Command, stderr string) (bool, error) {
			return cmd.StartsWith("rm") && cmd.HasArguments() &&
				!hasAnyArgument(cmd, "-r", "-R", "-rf", "-fr", "--recursive") &&
				containsAny(stderr, "is a directory"), nil
		},
		Correct: func(cmd command.Command, _ string) ([]Correction, error) {
			return []Correction{{
				Text:        replaceProgram(cmd, "rm -r"),
				SideEffects: []string{"removes directories recursively"},
			}}, nil
		},
	}
}
