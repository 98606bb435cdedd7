// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// EnvVar overrides the level chosen by flags and config.
const EnvVar = "FSM_LOG"

// DefaultLevel keeps normal runs quiet on stderr.
const DefaultLevel = slog.LevelWarn

// Setup installs a tint handler writing to stderr as the default logger and
// returns the level variable so it can be adjusted once flags are parsed.
func Setup() *slog.LevelVar {
	ll := &slog.LevelVar{}
	ll.Set(DefaultLevel)
	noColor := !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())
	slog.SetDefault(slog.New(NewHandler(colorable.NewColorable(os.Stderr), ll, noColor)))
	return ll
}

// NewHandler returns the tint handler used for every log line.
func NewHandler(w io.Writer, level slog.Leveler, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:       level,
		TimeFormat:  "15:04:05.000",
		NoColor:     noColor,
		ReplaceAttr: dropZero,
	})
}

// dropZero omits attributes carrying zero values.
func dropZero(groups []string, a slog.Attr) slog.Attr {
	skip := false
	switch t := a.Value.Any().(type) {
	case string:
		skip = t == ""
	case time.Duration:
		skip = t == 0
	case nil:
		skip = true
	}
	if skip {
		return slog.Attr{}
	}
	return a
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level: %q", s)
}

// Resolve picks the effective level. The environment variable wins, then
// the --debug and --verbose flags, then the configured level.
func Resolve(env string, debug, verbose bool, configured string) (slog.Level, error) {
	if strings.TrimSpace(env) != "" {
		l, err := ParseLevel(env)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", EnvVar, err)
		}
		return l, nil
	}
	switch {
	case debug:
		return slog.LevelDebug, nil
	case verbose:
		return slog.LevelInfo, nil
	}
	if strings.TrimSpace(configured) != "" {
		return ParseLevel(configured)
	}
	return DefaultLevel, nil
}
