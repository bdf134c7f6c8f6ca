package command

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// recentWindow is how old a command may be and still count as recent.
const recentWindow = time.Hour

// Command is a snapshot of a failed invocation. It is immutable: the With*
// methods return a new Command and the environment is copied on the way in
// and on the way out, so no two values share mutable state.
type Command struct {
	text      string
	shell     Shell
	timestamp time.Time
	env       map[string]string
	cwd       string
}

// New creates a Command stamped with the current time and an empty
// environment. The working directory is left empty; use WithCwd.
func New(text string, shell Shell) Command {
	return Command{
		text:      text,
		shell:     shell,
		timestamp: time.Now().UTC(),
		env:       map[string]string{},
	}
}

// Text returns the raw invocation text.
func (c Command) Text() string { return c.text }

// Shell returns the shell the command ran under.
func (c Command) Shell() Shell { return c.shell }

// Timestamp returns when the command was captured.
func (c Command) Timestamp() time.Time { return c.timestamp }

// Cwd returns the working directory the command ran in.
func (c Command) Cwd() string { return c.cwd }

// Environ returns a copy of the captured environment.
func (c Command) Environ() map[string]string {
	return maps.Clone(c.env)
}

// Env returns a single environment value and whether it was set.
func (c Command) Env(key string) (string, bool) {
	v, ok := c.env[key]
	return v, ok
}

// WithText returns a copy of c with different text.
func (c Command) WithText(text string) Command {
	out := c.clone()
	out.text = text
	return out
}

// WithEnv returns a copy of c with env replacing the captured environment.
func (c Command) WithEnv(env map[string]string) Command {
	out := c.clone()
	out.env = maps.Clone(env)
	if out.env == nil {
		out.env = map[string]string{}
	}
	return out
}

// WithCwd returns a copy of c with a different working directory.
func (c Command) WithCwd(cwd string) Command {
	out := c.clone()
	out.cwd = cwd
	return out
}

// WithTimestamp returns a copy of c with a different capture time.
func (c Command) WithTimestamp(ts time.Time) Command {
	out := c.clone()
	out.timestamp = ts
	return out
}

// WithShell returns a copy of c attributed to a different shell.
func (c Command) WithShell(shell Shell) Command {
	out := c.clone()
	out.shell = shell
	return out
}

func (c Command) clone() Command {
	out := c
	out.env = maps.Clone(c.env)
	if out.env == nil {
		out.env = map[string]string{}
	}
	return out
}

// Trimmed returns the text without surrounding whitespace.
func (c Command) Trimmed() string {
	return strings.TrimSpace(c.text)
}

// IsEmpty reports whether the text is blank.
func (c Command) IsEmpty() bool {
	return c.Trimmed() == ""
}

// Program returns the first whitespace-separated token, or "" for an empty
// command.
func (c Command) Program() string {
	fields := strings.Fields(c.text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Arguments returns every token after the program.
func (c Command) Arguments() []string {
	fields := strings.Fields(c.text)
	if len(fields) < 2 {
		return []string{}
	}
	return fields[1:]
}

// ArgumentCount returns len(Arguments()).
func (c Command) ArgumentCount() int {
	return len(c.Arguments())
}

// HasArguments reports whether the command has at least one argument.
func (c Command) HasArguments() bool {
	return c.ArgumentCount() > 0
}

// Argument returns the argument at index i.
func (c Command) Argument(i int) (string, bool) {
	args := c.Arguments()
	if i < 0 || i >= len(args) {
		return "", false
	}
	return args[i], true
}

// StartsWith reports whether the program equals program, ignoring case.
func (c Command) StartsWith(program string) bool {
	p := c.Program()
	return p != "" && strings.EqualFold(p, program)
}

// ContainsArgument reports whether any argument equals arg, ignoring case.
func (c Command) ContainsArgument(arg string) bool {
	for _, a := range c.Arguments() {
		if strings.EqualFold(a, arg) {
			return true
		}
	}
	return false
}

// Validate rejects blank commands.
func (c Command) Validate() error {
	if c.IsEmpty() {
		return fmt.Errorf("%w: command text cannot be empty", ErrValidation)
	}
	return nil
}

// Parse tokenizes the command on whitespace. It fails only when the text is
// blank.
func (c Command) Parse() (ParsedCommand, error) {
	fields := strings.Fields(c.text)
	if len(fields) == 0 {
		return ParsedCommand{}, fmt.Errorf("%w: command text is empty", ErrParse)
	}
	return ParsedCommand{
		Program:   fields[0],
		Arguments: append([]string{}, fields[1:]...),
		Original:  c.text,
	}, nil
}

// Age returns how long ago the command was captured.
func (c Command) Age() time.Duration {
	return time.Since(c.timestamp)
}

// IsRecent reports whether the command was captured within the last hour.
func (c Command) IsRecent() bool {
	return c.Age() < recentWindow
}

func (c Command) String() string {
	return c.text
}

// ParsedCommand is the tokenized view of a Command.
type ParsedCommand struct {
	Program   string
	Arguments []string
	Original  string
}

func (p ParsedCommand) String() string {
	if len(p.Arguments) == 0 {
		return p.Program
	}
	return p.Program + " " + strings.Join(p.Arguments, " ")
}
