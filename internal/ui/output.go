package ui

import (
	"fmt"
	"strconv"
)

type status int

const (
	statusOK status = iota
	statusWarn
	statusErr
)

var statusSymbols = [...]string{
	statusOK:   "✓",
	statusWarn: "⚠",
	statusErr:  "✗",
}

func mark(s status, format string, args ...interface{}) string {
	return statusSymbols[s] + " " + fmt.Sprintf(format, args...)
}

// Successf formats a message prefixed with a check mark.
func Successf(format string, args ...interface{}) string {
	return mark(statusOK, format, args...)
}

// Warning prefixes msg with a warning sign.
func Warning(msg string) string {
	return mark(statusWarn, "%s", msg)
}

// Warningf is Warning with formatting.
func Warningf(format string, args ...interface{}) string {
	return mark(statusWarn, format, args...)
}

// Errorf formats a message prefixed with a cross.
func Errorf(format string, args ...interface{}) string {
	return mark(statusErr, format, args...)
}

// FilePath styles a path or URL with the accent color.
func FilePath(path string) string {
	return Accent.Render(path)
}

// Hint renders secondary text.
func Hint(msg string) string {
	return Muted.Render(msg)
}

// Count renders "1 file" / "3 files".
func Count(n int, singular, plural string) string {
	noun := plural
	if n == 1 {
		noun = singular
	}
	return strconv.Itoa(n) + " " + noun
}
