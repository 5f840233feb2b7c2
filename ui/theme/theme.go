// Package theme defines the styles used to draw a render tree on a
// terminal. The screen picks a style by the node's "style" prop,
// falling back to the node type.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds one style per named role.
type Theme struct {
	Text    lipgloss.Style
	Heading lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Button  lipgloss.Style
	Focus   lipgloss.Style // applied on top of the focused button
	Status  lipgloss.Style // bottom help line

	// Indent is the number of cells each nested box is shifted right.
	Indent int
}

// Colors of the default theme, as ANSI 256 palette indexes.
var (
	AccentColor = lipgloss.Color("33")
	MutedColor  = lipgloss.Color("245")
	LabelColor  = lipgloss.Color("178")
)

// Default returns the colored theme.
func Default() *Theme {
	return &Theme{
		Text:    lipgloss.NewStyle(),
		Heading: lipgloss.NewStyle().Bold(true).Underline(true),
		Label:   lipgloss.NewStyle().Foreground(LabelColor),
		Muted:   lipgloss.NewStyle().Foreground(MutedColor).Italic(true),
		Button:  lipgloss.NewStyle().Foreground(AccentColor),
		Focus:   lipgloss.NewStyle().Reverse(true),
		Status:  lipgloss.NewStyle().Foreground(MutedColor),
		Indent:  2,
	}
}

// Plain returns a theme that adds no escape sequences.
func Plain() *Theme {
	s := lipgloss.NewStyle()
	return &Theme{
		Text: s, Heading: s, Label: s, Muted: s,
		Button: s, Focus: s, Status: s,
		Indent: 2,
	}
}

// For returns the style for a span with the given style prop and node
// type.
func (t *Theme) For(style, typ string) lipgloss.Style {
	switch style {
	case "heading":
		return t.Heading
	case "label":
		return t.Label
	case "muted":
		return t.Muted
	}
	if typ == "button" {
		return t.Button
	}
	return t.Text
}
