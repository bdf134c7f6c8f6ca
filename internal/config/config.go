package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cmdfix/internal/command"
)

// UI modes for the confirmation prompt.
const (
	UIAuto  = "auto"
	UITUI   = "tui"
	UIPlain = "plain"
)

// Themes are the catppuccin flavours.
var Themes = []string{"mocha", "macchiato", "frappe", "latte"}

// SideEffectGroup attaches a warning to commands whose pattern matches
type SideEffectGroup struct {
	// Name is the display name of this group
	Name string `yaml:"name"`

	// Warning is shown next to matching candidates
	Warning string `yaml:"warning"`

	// Patterns are command patterns such as "sudo:*" or "git:push" (supports wildcards)
	Patterns []string `yaml:"patterns"`
}

// Config holds the application configuration
type Config struct {
	// RequireConfirmation asks before running a candidate. When false the
	// first candidate runs straight away.
	RequireConfirmation bool `yaml:"require_confirmation"`

	// Repeat re-runs the fixer when a corrected command fails too
	Repeat bool `yaml:"repeat"`

	// Debug enables debug logging
	Debug bool `yaml:"debug"`

	// WaitCommand is how many seconds to wait when re-running the failed
	// command to capture its output
	WaitCommand int `yaml:"wait_command"`

	// ExecutionTimeout bounds a corrected command, as a Go duration. Empty
	// means no limit.
	ExecutionTimeout string `yaml:"execution_timeout"`

	// Workers bounds concurrent rule evaluation (0 = number of CPUs)
	Workers int `yaml:"workers"`

	// Theme is the color theme to use (mocha, macchiato, frappe, latte)
	Theme string `yaml:"theme"`

	// UI selects the confirmation prompt (auto, tui, plain)
	UI string `yaml:"ui"`

	// ExcludeRules lists rule IDs that are registered disabled
	ExcludeRules []string `yaml:"exclude_rules"`

	// Priority overrides rule priorities by ID
	Priority map[string]int `yaml:"priority"`

	// InstantMode reads output from the shell log instead of re-running
	InstantMode bool `yaml:"instant_mode"`

	// ShellLog is the shell log path
	ShellLog string `yaml:"shell_log"`

	// SideEffects defines warning groups (checked in order, first match wins)
	SideEffects []SideEffectGroup `yaml:"side_effects"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequireConfirmation: true,
		WaitCommand:         3,
		Theme:               "mocha",
		UI:                  UIAuto,
		ShellLog:            DefaultShellLogPath(),
		SideEffects: []SideEffectGroup{
			{
				Name:    "destructive",
				Warning: "deletes files",
				Patterns: []string{
					"rm",
					"sudo:rm",
					"shred",
					"dd",
					"sudo:dd",
					"mkfs*",
					"sudo:mkfs*",
				},
			},
			{
				Name:     "privileged",
				Warning:  "runs with elevated privileges",
				Patterns: []string{"sudo:*"},
			},
			{
				Name:     "publish",
				Warning:  "changes a remote repository",
				Patterns: []string{"git:push"},
			},
		},
	}
}

// DefaultShellLogPath returns $XDG_STATE_HOME/cmdfix/shell.log, falling back
// to ~/.local/state/cmdfix/shell.log.
func DefaultShellLogPath() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "cmdfix", "shell.log")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state", "cmdfix", "shell.log")
}

// Load reads the config from a YAML file, falling back to defaults.
// Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //nolint:gosec // config path from known locations
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", cleanPath, err)
	}

	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cleanPath, err)
	}
	return cfg, nil
}

// LoadFromDefaultPath attempts to load config from standard locations
func LoadFromDefaultPath() (*Config, error) {
	// Check in order: current dir, ~/.config/cmdfix/, XDG_CONFIG_HOME
	paths := []string{
		"cmdfix.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "cmdfix", "config.yaml"),
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "cmdfix", "config.yaml"))
	}

	for _, path := range paths {
		cleanPath := filepath.Clean(path)
		if _, err := os.Stat(cleanPath); err == nil { //nolint:gosec // config path from known locations
			return Load(cleanPath)
		}
	}

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	return cfg, cfg.Validate()
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.UI {
	case UIAuto, UITUI, UIPlain:
	default:
		return fmt.Errorf("ui must be one of auto, tui, plain, got %q", c.UI)
	}
	if !slices.Contains(Themes, c.Theme) {
		return fmt.Errorf("theme must be one of %s, got %q", strings.Join(Themes, ", "), c.Theme)
	}
	if c.WaitCommand < 0 {
		return fmt.Errorf("wait_command must not be negative, got %d", c.WaitCommand)
	}
	if c.ExecutionTimeout != "" {
		if _, err := time.ParseDuration(c.ExecutionTimeout); err != nil {
			return fmt.Errorf("execution_timeout: %w", err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v, ok := envBool("CMDFIX_REQUIRE_CONFIRMATION"); ok {
		c.RequireConfirmation = v
	}
	if v, ok := envBool("CMDFIX_REPEAT"); ok {
		c.Repeat = v
	}
	if v, ok := envBool("CMDFIX_DEBUG"); ok {
		c.Debug = v
	}
	if v := os.Getenv("CMDFIX_EXCLUDE_RULES"); v != "" {
		c.ExcludeRules = nil
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				c.ExcludeRules = append(c.ExcludeRules, id)
			}
		}
	}
	if v := os.Getenv("CMDFIX_WAIT_COMMAND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WaitCommand = n
		}
	}
	if v := os.Getenv("CMDFIX_SHELL_LOG"); v != "" {
		c.ShellLog = v
	}
	if v := os.Getenv("CMDFIX_UI"); v != "" {
		c.UI = strings.ToLower(v)
	}
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// WaitCommandDuration returns WaitCommand as a duration.
func (c *Config) WaitCommandDuration() time.Duration {
	return time.Duration(c.WaitCommand) * time.Second
}

// GetExecutionTimeout returns the corrected-command timeout, or zero for
// none.
func (c *Config) GetExecutionTimeout() time.Duration {
	d, err := time.ParseDuration(c.ExecutionTimeout)
	if err != nil {
		return 0
	}
	return d
}

// IsExcluded reports whether a rule ID is excluded.
func (c *Config) IsExcluded(id string) bool {
	return slices.Contains(c.ExcludeRules, id)
}

// GetSideEffectGroup returns the first matching group for a pattern, or nil
func (c *Config) GetSideEffectGroup(pattern string) *SideEffectGroup {
	for i := range c.SideEffects {
		group := &c.SideEffects[i]
		if group.Matches(pattern) {
			return group
		}
	}
	return nil
}

// SideEffectsFor returns the configured warning for a command text, if any.
func (c *Config) SideEffectsFor(text string) []string {
	group := c.GetSideEffectGroup(command.ExtractPattern(text))
	if group == nil || group.Warning == "" {
		return nil
	}
	return []string{group.Warning}
}

// Matches returns true if the pattern matches this group
func (g *SideEffectGroup) Matches(pattern string) bool {
	if pattern == "" {
		return false
	}
	for _, p := range g.Patterns {
		if command.MatchPattern(p, pattern) {
			return true
		}
	}
	return false
}
