package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/fsm/internal/atomicfile"
)

// Encode renders cfg as TOML. Blank strings and unset booleans are left
// out so the file only records what the user chose.
func Encode(cfg *Config) ([]byte, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	doc := make(map[string]interface{})
	putString(doc, "default_format", cfg.DefaultFormat)
	putString(doc, "opener", cfg.Opener)
	putString(doc, "log_level", cfg.LogLevel)

	ui := make(map[string]interface{})
	putString(ui, "accent", cfg.UI.Accent)
	if cfg.UI.RenderComments != nil {
		ui["render_comments"] = *cfg.UI.RenderComments
	}
	if len(ui) > 0 {
		doc["ui"] = ui
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func putString(m map[string]interface{}, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		m[key] = v
	}
}

// SaveTo replaces the config file at path, creating its directory.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
