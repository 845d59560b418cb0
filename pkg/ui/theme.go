package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals use the
// terminal's own background instead of a down-converted approximation.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the styles the sheet is drawn with.
type Theme struct {
	Renderer *lipgloss.Renderer
	Name     string

	Primary lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor

	// Cell paints, indexed by paint.
	Cells [numPaints]lipgloss.Style

	Status  lipgloss.Style
	Error   lipgloss.Style
	Title   lipgloss.Style
	Overlay lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired theme. name is "dark" or
// "light"; it forces the adaptive colors to one side.
func DefaultTheme(r *lipgloss.Renderer, name string) Theme {
	switch name {
	case "light":
		r.SetHasDarkBackground(false)
	case "dark":
		r.SetHasDarkBackground(true)
	}

	t := Theme{
		Renderer: r,
		Name:     name,
		Primary:  lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Muted:    lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Border:   lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
	}
	text := lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	headerBg := lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	highlight := lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}

	t.Cells[paintBody] = r.NewStyle().Foreground(text)
	t.Cells[paintHeader] = r.NewStyle().Foreground(t.Primary).Background(headerBg).Bold(true)
	t.Cells[paintSelected] = r.NewStyle().Foreground(text).Background(highlight).Bold(true)
	t.Cells[paintCorner] = r.NewStyle().Background(headerBg)

	t.Status = r.NewStyle().Foreground(t.Muted)
	t.Error = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}).Bold(true)
	t.Title = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Overlay = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout), "dark")
}
