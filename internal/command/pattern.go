package command

import (
	"strings"
)

// subcommandDepth defines how many subcommand levels to capture for each program.
// Programs not in this map get depth 0 (program only, no subcommands).
var subcommandDepth = map[string]int{
	// Version control
	"git": 1,
	"hg":  1,

	// Storage
	"zfs":   1,
	"zpool": 1,

	// Containers/VMs
	"podman":  1,
	"docker":  1,
	"kubectl": 1,
	"helm":    1,

	// System services
	"systemctl": 1,
	"launchctl": 1,

	// Build tools and package managers
	"go":    1,
	"cargo": 1,
	"npm":   1,
	"yarn":  1,
	"pnpm":  1,
	"pip":   1,
	"uv":    1,
	"make":  1,
	"apt":   1,
	"brew":  1,

	// GitHub CLI
	"gh": 1,

	// Terminal multiplexer
	"tmux": 1,
}

// ExtractPattern reduces a command line to its permission-style pattern:
// [sudo:]<program>[:<subcommand>]. Environment assignments, sudo flags and
// wrappers such as env, time and nice are skipped, so
// "FOO=1 sudo -u root git push -f" becomes "sudo:git:push".
func ExtractPattern(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	// Skip environment variable assignments (FOO=bar command)
	words = skipEnvVars(words)
	if len(words) == 0 {
		return ""
	}

	hasSudo := words[0] == "sudo"
	if hasSudo {
		words = skipSudoFlags(words[1:])
	}

	words = unwrapCommand(words)

	// Handle shell -c "subcommand"
	if len(words) > 0 && isShell(words[0]) {
		words = extractShellCommand(words)
	}

	var parts []string
	if hasSudo {
		parts = append(parts, "sudo")
	}
	if len(words) > 0 {
		parts = append(parts, words[0])
		parts = append(parts, extractSubcommands(words[0], words[1:])...)
	}
	return strings.Join(parts, ":")
}

// MatchPattern reports whether a pattern with an optional single * wildcard
// matches value.
func MatchPattern(pattern, value string) bool {
	if pattern == value {
		return true
	}

	// Wildcard match - supports single * anywhere in pattern
	// e.g., "sudo:*" matches "sudo:rm" and "sudo:git:push"
	if prefix, suffix, ok := strings.Cut(pattern, "*"); ok {
		return len(value) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(value, prefix) && strings.HasSuffix(value, suffix)
	}

	return false
}

// extractSubcommands extracts subcommands from args based on the program's depth
func extractSubcommands(program string, args []string) []string {
	depth := subcommandDepth[program]
	if depth == 0 || len(args) == 0 {
		return nil
	}

	var subcommands []string
	for i := 0; i < depth && len(args) > 0; i++ {
		// Skip flags to find the subcommand
		args = skipFlags(args)
		if len(args) == 0 {
			break
		}
		subcommands = append(subcommands, args[0])
		args = args[1:]
	}
	return subcommands
}

// skipFlags skips leading flag arguments
func skipFlags(args []string) []string {
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		args = args[1:]
	}
	return args
}

// skipEnvVars skips environment variable assignments at the start of a command
func skipEnvVars(words []string) []string {
	for len(words) > 0 && strings.Contains(words[0], "=") && !strings.HasPrefix(words[0], "-") {
		words = words[1:]
	}
	return words
}

// skipSudoFlags advances past sudo flags and returns remaining words
func skipSudoFlags(words []string) []string {
	for len(words) > 0 {
		w := words[0]
		if !strings.HasPrefix(w, "-") {
			return words
		}
		// Flags that take an argument
		if w == "-u" || w == "-g" || w == "-C" || w == "-D" || w == "-h" || w == "-p" {
			if len(words) > 1 {
				words = words[2:]
			} else {
				words = words[1:]
			}
		} else {
			words = words[1:]
		}
	}
	return words
}

// unwrapCommand handles command wrappers like env, time, nice, etc.
func unwrapCommand(words []string) []string {
	if len(words) == 0 {
		return words
	}

	switch words[0] {
	case "env":
		for i := 1; i < len(words); i++ {
			if strings.Contains(words[i], "=") || strings.HasPrefix(words[i], "-") {
				continue
			}
			return words[i:]
		}
		return nil
	case "time", "nohup", "command", "builtin", "exec":
		if len(words) > 1 {
			return words[1:]
		}
		return nil
	case "nice":
		for i := 1; i < len(words); i++ {
			if words[i] == "-n" && i+1 < len(words) {
				i++ // skip the priority value
				continue
			}
			if strings.HasPrefix(words[i], "-") {
				continue
			}
			return words[i:]
		}
		return nil
	case "xargs":
		for i := 1; i < len(words); i++ {
			if !strings.HasPrefix(words[i], "-") {
				return words[i:]
			}
		}
		return nil
	default:
		return words
	}
}

// isShell returns true if the word invokes a POSIX shell
func isShell(word string) bool {
	return word == "bash" || word == "sh" || word == "zsh"
}

// extractShellCommand extracts the command from "sh -c 'command'"
func extractShellCommand(words []string) []string {
	for i := 1; i < len(words); i++ {
		if words[i] == "-c" && i+1 < len(words) {
			subCmd := strings.Join(words[i+1:], " ")
			// Strip surrounding quotes if present
			subCmd = strings.Trim(strings.TrimSpace(subCmd), "'\"")
			return strings.Fields(subCmd)
		}
	}
	return words // Return original if no -c found
}
