// Package alias generates the shell snippets that invoke cmdfix with the
// previous command and record failures for instant mode.
package alias

import (
	"errors"
	"fmt"
	"strings"

	"cmdfix/internal/command"
)

// DefaultName is the alias users type after a failed command.
const DefaultName = "fuck"

// ErrUnsupportedShell is returned for shells without a snippet.
var ErrUnsupportedShell = errors.New("no alias available for shell")

// Options configures the generated snippet
type Options struct {
	// Name of the alias (default "fuck")
	Name string
	// Binary is the cmdfix executable to call (default "cmdfix")
	Binary string
	// InstantMode adds a hook that records failed commands to the shell log
	InstantMode bool
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Binary == "" {
		o.Binary = "cmdfix"
	}
	return o
}

// Generate returns the snippet to add to the rc file of shell.
func Generate(shell command.Shell, opts Options) (string, error) {
	opts = opts.withDefaults()

	var alias, hook string
	switch shell {
	case command.ShellBash:
		alias = posixAlias
		hook = bashHook
	case command.ShellZsh:
		alias = posixAlias
		hook = zshHook
	case command.ShellFish:
		alias = fishAlias
		hook = fishHook
	case command.ShellPowerShell:
		alias = powershellAlias
		hook = powershellHook
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedShell, shell)
	}

	snippet := alias
	if opts.InstantMode {
		snippet += "\n" + hook
	}
	r := strings.NewReplacer(
		"{{name}}", opts.Name,
		"{{bin}}", opts.Binary,
		"{{shell}}", string(shell),
	)
	return r.Replace(snippet) + "\n", nil
}

// Shells lists the shells Generate supports
func Shells() []command.Shell {
	return []command.Shell{command.ShellBash, command.ShellZsh, command.ShellFish, command.ShellPowerShell}
}

const posixAlias = `alias {{name}}='CMDFIX_HISTORY="$(fc -ln -1 | tail -n1)" {{bin}} --shell {{shell}}'`

const bashHook = `_CMDFIX_LAST_HISTCMD="$HISTCMD"
_cmdfix_prompt() {
  local exit_code=$?
  if [ "$HISTCMD" = "$_CMDFIX_LAST_HISTCMD" ]; then
    return $exit_code
  fi
  _CMDFIX_LAST_HISTCMD="$HISTCMD"
  if [ "$exit_code" -ne 0 ]; then
    local last_command
    last_command=$(fc -ln -1 2>/dev/null)
    if [ -n "$last_command" ]; then
      {{bin}} record --command "$last_command" --exit-code "$exit_code" --cwd "$PWD" --shell bash >/dev/null 2>&1
    fi
  fi
  return $exit_code
}
case ";$PROMPT_COMMAND;" in
  *";_cmdfix_prompt;"*) ;;
  *) PROMPT_COMMAND="_cmdfix_prompt${PROMPT_COMMAND:+;$PROMPT_COMMAND}" ;;
esac`

const zshHook = `function _cmdfix_preexec() {
  CMDFIX_LAST_COMMAND="$1"
}
function _cmdfix_precmd() {
  local exit_code=$?
  if [ -n "$CMDFIX_LAST_COMMAND" ] && [ "$exit_code" -ne 0 ]; then
    {{bin}} record --command "$CMDFIX_LAST_COMMAND" --exit-code "$exit_code" --cwd "$PWD" --shell zsh >/dev/null 2>&1
  fi
  CMDFIX_LAST_COMMAND=""
}
autoload -Uz add-zsh-hook
add-zsh-hook preexec _cmdfix_preexec
add-zsh-hook precmd _cmdfix_precmd`

const fishAlias = `function {{name}} -d "Correct your previous console command"
  env CMDFIX_HISTORY=$history[1] {{bin}} --shell fish $argv
end`

const fishHook = `function __cmdfix_postexec --on-event fish_postexec
  set -l exit_code $status
  if test $exit_code -ne 0
    {{bin}} record --command "$argv[1]" --exit-code "$exit_code" --cwd "$PWD" --shell fish >/dev/null 2>&1
  end
end`

const powershellAlias = `function {{name}} {
  $env:CMDFIX_HISTORY = (Get-History -Count 1).CommandLine
  try { & {{bin}} --shell powershell @args } finally { Remove-Item Env:CMDFIX_HISTORY -ErrorAction SilentlyContinue }
}`

const powershellHook = `$global:__CmdfixLastId = 0
$global:__CmdfixPrompt = $function:prompt
function global:prompt {
  $ok = $?
  $last = Get-History -Count 1
  if (-not $ok -and $last -and $last.Id -ne $global:__CmdfixLastId) {
    $global:__CmdfixLastId = $last.Id
    $code = if ($LASTEXITCODE) { $LASTEXITCODE } else { 1 }
    & {{bin}} record --command $last.CommandLine --exit-code $code --cwd $PWD.Path --shell powershell *> $null
  }
  & $global:__CmdfixPrompt
}`
