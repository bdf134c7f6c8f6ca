package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used by the confirmers
type Styles struct {
	Title     lipgloss.Style
	Status    lipgloss.Style
	Command   lipgloss.Style
	Warning   lipgloss.Style
	Muted     lipgloss.Style
	Accepted  lipgloss.Style
	Rejected  lipgloss.Style
	Help      lipgloss.Style
	Separator string
}

// Flavor returns the catppuccin flavour for a theme name, defaulting to mocha.
func Flavor(theme string) catppuccin.Flavor {
	switch theme {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	default:
		return catppuccin.Mocha
	}
}

// NewStyles builds styles from a catppuccin theme name
func NewStyles(theme string) Styles {
	f := Flavor(theme)
	color := func(c catppuccin.Color) lipgloss.Color { return lipgloss.Color(c.Hex) }

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(color(f.Mauve())),
		Status: lipgloss.NewStyle().
			Foreground(color(f.Overlay1())),
		Command: lipgloss.NewStyle().
			Bold(true).
			Foreground(color(f.Text())),
		Warning: lipgloss.NewStyle().
			Foreground(color(f.Peach())).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(color(f.Overlay0())),
		Accepted: lipgloss.NewStyle().
			Foreground(color(f.Green())),
		Rejected: lipgloss.NewStyle().
			Foreground(color(f.Red())),
		Help: lipgloss.NewStyle().
			Foreground(color(f.Overlay0())),
		Separator: " · ",
	}
}
