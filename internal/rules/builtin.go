package rules

import (
	"strings"

	"cmdfix/internal/command"
)

// posixShells are the shells that understand sudo and &&.
var posixShells = []command.Shell{
	command.ShellBash,
	command.ShellZsh,
	command.ShellFish,
	command.Shell("sh"),
}

// Builtins returns the built-in rules in their registration order. Each call
// returns fresh values, so callers may adjust priorities before registering.
func Builtins() []Rule {
	return []Rule{
		cdParent(),
		gitPushSetUpstream(),
		gitNotCommand(),
		mkdirP(),
		noCommand(),
		pythonCommand(),
		sudo(),
		rmDir(),
		cdMkdir(),
		gitPushForce(),
	}
}

// NewDefaultRegistry returns a registry holding every built-in rule.
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, r := range Builtins() {
		reg.MustRegister(r)
	}
	return reg
}

// replaceArgument swaps the first argument equal to old for repl.
func replaceArgument(cmd command.Command, old, repl string) string {
	fields := strings.Fields(cmd.Text())
	for i := 1; i < len(fields); i++ {
		if fields[i] == old {
			fields[i] = repl
			break
		}
	}
	return strings.Join(fields, " ")
}

// replaceProgram swaps the program for repl, keeping the arguments.
func replaceProgram(cmd command.Command, repl string) string {
	return strings.Join(append([]string{repl}, cmd.Arguments()...), " ")
}

// containsAny reports whether s contains any of substrs, ignoring case.
func containsAny(s string, substrs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func hasAnyArgument(cmd command.Command, args ...string) bool {
	for _, a := range args {
		if cmd.ContainsArgument(a) {
			return true
		}
	}
	return false
}
