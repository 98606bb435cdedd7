package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is assumed when the width cannot be detected.
const DefaultTermWidth = 100

// minWrapWidth keeps wrapped text readable on very narrow terminals.
const minWrapWidth = 20

// DisplayContext describes where human-readable output goes.
type DisplayContext struct {
	Width int
	TTY   bool
}

// Detect inspects f. Widths are only queried for terminals.
func Detect(f *os.File) *DisplayContext {
	d := Plain()
	if !term.IsTerminal(f.Fd()) {
		return d
	}
	d.TTY = true
	if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
		d.Width = w
	}
	return d
}

// Plain describes non-terminal output.
func Plain() *DisplayContext {
	return &DisplayContext{Width: DefaultTermWidth}
}

// WrapWidth returns the width left for text indented by margin columns.
func (d *DisplayContext) WrapWidth(margin int) int {
	return max(d.Width-margin, minWrapWidth)
}
