package output

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/rileyhilliard/lsview/internal/ui"
)

// Color modes of the output.color setting.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of the terminal behind w, 0 when w is not
// a terminal.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// Styled decides whether output to w gets colors. NO_COLOR wins over auto.
func Styled(w io.Writer, mode string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(w)
}

// SetupColors applies the color decision for w process wide and returns
// it.
func SetupColors(w io.Writer, mode string) bool {
	styled := Styled(w, mode)
	if styled {
		ui.EnableColors()
	} else {
		ui.DisableColors()
	}
	return styled
}
