package command

import (
	"path/filepath"
	"strings"
)

// Shell identifies the shell a command was typed into. Known shells use the
// constants below; any other name is kept verbatim and reported as unsupported.
type Shell string

const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
	ShellCmd        Shell = "cmd"
)

// ParseShell maps a shell name or path to a Shell. Matching is
// case-insensitive and accepts the usual aliases (pwsh, cmd.exe).
func ParseShell(name string) Shell {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := strings.ToLower(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	base = strings.TrimSuffix(base, ".exe")
	switch base {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	case "powershell", "pwsh":
		return ShellPowerShell
	case "cmd":
		return ShellCmd
	default:
		return Shell(base)
	}
}

// DetectShell works out the user's shell from an environment lookup
// function such as os.Getenv. $SHELL wins; on Windows hosts without it the
// PowerShell module path or ComSpec is used.
func DetectShell(getenv func(string) string) Shell {
	if sh := getenv("SHELL"); sh != "" {
		return ParseShell(sh)
	}
	if getenv("PSModulePath") != "" {
		return ShellPowerShell
	}
	if spec := getenv("ComSpec"); spec != "" {
		return ParseShell(spec)
	}
	return Shell("sh")
}

// IsSupported reports whether s is one of the known shells.
func (s Shell) IsSupported() bool {
	switch s {
	case ShellBash, ShellZsh, ShellFish, ShellPowerShell, ShellCmd:
		return true
	default:
		return false
	}
}

// IsPOSIX reports whether the shell understands POSIX-style syntax such as
// `&&` chaining and `sudo` prefixes.
func (s Shell) IsPOSIX() bool {
	switch s {
	case ShellPowerShell, ShellCmd:
		return false
	default:
		return true
	}
}

func (s Shell) String() string {
	return string(s)
}
