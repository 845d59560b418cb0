package ui

import (
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func TestDefaultTheme(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	theme := DefaultTheme(renderer, "dark")

	if theme.Renderer != renderer {
		t.Error("DefaultTheme renderer mismatch")
	}
	if theme.Name != "dark" {
		t.Errorf("Name = %q, want dark", theme.Name)
	}
	if !renderer.HasDarkBackground() {
		t.Error("dark theme did not force a dark background")
	}
	if isColorEmpty(theme.Primary) {
		t.Error("DefaultTheme Primary color is empty")
	}
}

func TestDefaultTheme_Light(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	DefaultTheme(renderer, "light")
	if renderer.HasDarkBackground() {
		t.Error("light theme left a dark background")
	}
}

func isColorEmpty(c lipgloss.AdaptiveColor) bool {
	return c.Light == "" && c.Dark == ""
}

func TestThemeColorsFollowProfile(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	tests := []struct {
		profile colorprofile.Profile
		bgNone  bool
		fgANSI  bool
	}{
		{colorprofile.TrueColor, false, false},
		{colorprofile.ANSI256, true, false},
		{colorprofile.ANSI, true, true},
	}
	for _, tt := range tests {
		TermProfile = tt.profile
		_, isNone := ThemeBg("#282A36").(lipgloss.NoColor)
		if isNone != tt.bgNone {
			t.Errorf("profile %v: ThemeBg NoColor = %v, want %v", tt.profile, isNone, tt.bgNone)
		}
		_, isANSI := ThemeFg("#F8F8F2").(lipgloss.ANSIColor)
		if isANSI != tt.fgANSI {
			t.Errorf("profile %v: ThemeFg ANSI = %v, want %v", tt.profile, isANSI, tt.fgANSI)
		}
	}
}
