package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// defaultAccent colors paths and collection names unless configured.
// Status lines carry symbols rather than colors.
const defaultAccent = "#A78BFA"

var (
	accentColor = defaultAccent

	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted renders value kinds, timestamps and hints.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// AccentBold renders entry titles and collection names.
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent)).Bold(true)
)

// ConfigureTheme applies the configured accent color. An empty value keeps
// the default; "none", "off" and "default" disable the accent; anything
// unparseable falls back to the default.
func ConfigureTheme(accent string) {
	trimmed := strings.ToLower(strings.TrimSpace(accent))
	switch trimmed {
	case "":
		setAccent(defaultAccent)
		return
	case "none", "off", "default":
		accentColor = ""
		Accent = lipgloss.NewStyle()
		AccentBold = lipgloss.NewStyle().Bold(true)
		return
	}
	if color, ok := normalizeAccentColor(accent); ok {
		setAccent(color)
		return
	}
	setAccent(defaultAccent)
}

// AccentColor returns the active accent color, if any.
func AccentColor() (string, bool) {
	return accentColor, accentColor != ""
}

func setAccent(color string) {
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// normalizeAccentColor accepts ANSI codes 0-255 and #RGB / #RRGGBB hex.
func normalizeAccentColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return "", false
		}
		return strconv.Itoa(n), true
	}
	if !strings.HasPrefix(s, "#") {
		return "", false
	}
	hex := s[1:]
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", false
	}
	switch len(hex) {
	case 3:
		return fmt.Sprintf("#%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]), true
	case 6:
		return "#" + hex, true
	}
	return "", false
}
