// Package config handles the global fsm configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/fsm/internal/atomicfile"
	"github.com/aidanlsb/fsm/internal/repo"
)

// Config represents the global fsm configuration.
type Config struct {
	// DefaultFormat is used by 'db init' when --format is not given.
	DefaultFormat string `toml:"default_format"`

	// Opener is the command used by 'open'. The URL is appended as the last
	// argument. Empty means the operating system's default handler.
	Opener string `toml:"opener"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	// UI controls optional CLI presentation preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI presentation preferences.
type UIConfig struct {
	// Accent is an optional accent color for paths and headers.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// RenderComments renders comments as markdown when stdout is a terminal.
	// Unset means true.
	RenderComments *bool `toml:"render_comments"`
}

// Format returns the configured default format, falling back to json.
func (c *Config) Format() (repo.Format, error) {
	if strings.TrimSpace(c.DefaultFormat) == "" {
		return repo.FormatJSON, nil
	}
	return repo.ParseFormat(strings.TrimSpace(c.DefaultFormat))
}

// ShouldRenderComments reports whether comments are rendered as markdown.
func (c *Config) ShouldRenderComments() bool {
	return c.UI.RenderComments == nil || *c.UI.RenderComments
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if _, err := c.Format(); err != nil {
		return fmt.Errorf("default_format: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	return nil
}

// Load reads the config at DefaultPath.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads and validates the config at path. A missing file yields
// the zero Config. Unknown keys are logged and ignored.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &Config{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		slog.Warn("ignoring unknown config key", "key", key.String(), "path", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveConfigPath returns override when set, else DefaultPath.
func ResolveConfigPath(override string) string {
	if strings.TrimSpace(override) == "" {
		return DefaultPath()
	}
	return override
}

// DefaultPath prefers an existing ~/.config/fsm/config.toml and otherwise
// uses the platform config directory.
func DefaultPath() string {
	const rel = "fsm/config.toml"
	if home, err := os.UserHomeDir(); err == nil {
		xdg := filepath.Join(home, ".config", filepath.FromSlash(rel))
		if _, err := os.Stat(xdg); err == nil {
			return xdg
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, filepath.FromSlash(rel))
	}
	return "config.toml"
}

const defaultConfig = `# fsm configuration

# Format used by 'fsm db init' when --format is omitted:
#   json, json-pretty or binary
# default_format = "json"

# Command used by 'fsm open'; the URL is passed as the last argument.
# Defaults to the operating system's handler (xdg-open, open, rundll32).
# opener = "firefox"

# Log level written to stderr: debug, info, warn or error.
# log_level = "warn"

# [ui]
# Accent color for paths and headers. ANSI codes (0-255) or hex (#RRGGBB).
# accent = "39"
# Render comments as markdown when writing to a terminal.
# render_comments = true
`

// CreateDefault writes a commented default config to path unless a file
// already exists there. It reports whether a file was written.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
