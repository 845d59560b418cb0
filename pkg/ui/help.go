package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

// helpMarkdown builds the help overlay text from the keymap so the two never
// drift apart.
func helpMarkdown(k keyMap) string {
	var b strings.Builder
	b.WriteString("# sv\n\n")
	b.WriteString("Scroll the body and the headers follow. Drag with the mouse to pan; ")
	b.WriteString("release quickly to fling. The wheel scrolls by whole cells, ")
	b.WriteString("shift+wheel scrolls sideways.\n\n")

	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Moving around", []key.Binding{k.Left, k.Right, k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.GoTo}},
		{"Layout", []key.Binding{k.Wider, k.Narrower}},
		{"Data", []key.Binding{k.Copy, k.Reload, k.Export}},
		{"General", []key.Binding{k.Help, k.Quit}},
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n| Key | Action |\n|---|---|\n", s.title)
		for _, kb := range s.bindings {
			h := kb.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString("The go-to prompt takes `B12`, a row number such as `40`, or `row,column`.\n")
	return b.String()
}

// renderHelp renders the help markdown for the terminal. It falls back to
// the raw markdown when glamour fails.
func renderHelp(k keyMap, theme string, width int) string {
	md := helpMarkdown(k)
	style := "dark"
	if theme == "light" {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
