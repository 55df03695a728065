package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication, as ANSI codes for broad terminal
// compatibility.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
	ColorUnknown lipgloss.Color = "5" // Magenta
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Monitoring states by CSS class word. Host states and service states use
// different numbering: a host in state 1 is down, a service in state 1 is
// warning.
var stateColors = map[string]lipgloss.Color{
	"state0":  ColorSuccess,
	"state1":  ColorWarning,
	"state2":  ColorError,
	"state3":  ColorUnknown,
	"statep":  ColorMuted,
	"hstate0": ColorSuccess,
	"hstate1": ColorError,
	"hstate2": ColorUnknown,
	"hstatep": ColorMuted,
}

// StateColor returns the color of the first state word in a painter's
// class, such as "state svcstate state2". ok is false for classes without
// state.
func StateColor(class string) (lipgloss.Color, bool) {
	for _, word := range strings.Fields(class) {
		if c, ok := stateColors[word]; ok {
			return c, true
		}
	}
	return "", false
}

// ClassStyle maps a painter's class to a terminal style.
func ClassStyle(class string) lipgloss.Style {
	style := lipgloss.NewStyle()
	if c, ok := StateColor(class); ok {
		style = style.Foreground(c)
	}
	for _, word := range strings.Fields(class) {
		switch word {
		case "state":
			style = style.Bold(true)
		case "zero", "staletime":
			style = style.Foreground(ColorMuted)
		case "recent":
			style = style.Bold(true)
		}
	}
	return style
}

// Common styles.

func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }
func ErrorStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorError) }
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }
func MutedStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorMuted) }
func HeaderStyle() lipgloss.Style  { return lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary) }

// DisableColors switches lipgloss to monochrome output.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// EnableColors forces ANSI colors, even when not writing to a terminal.
func EnableColors() {
	lipgloss.SetColorProfile(termenv.ANSI256)
}
