package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/fsm/internal/repo"
)

func TestLoadFrom(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `default_format = "binary"
opener = "firefox"
log_level = "debug"

[ui]
accent = "39"
render_comments = false
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	format, err := cfg.Format()
	if err != nil || format != repo.FormatBinary {
		t.Errorf("expected default_format binary, got %q (%v)", format, err)
	}
	if cfg.Opener != "firefox" {
		t.Errorf("expected opener 'firefox', got %q", cfg.Opener)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level 'debug', got %q", cfg.LogLevel)
	}
	if cfg.UI.Accent != "39" {
		t.Errorf("expected ui.accent '39', got %q", cfg.UI.Accent)
	}
	if cfg.ShouldRenderComments() {
		t.Errorf("expected render_comments=false")
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	format, err := cfg.Format()
	if err != nil || format != repo.FormatJSON {
		t.Errorf("expected json default, got %q (%v)", format, err)
	}
	if !cfg.ShouldRenderComments() {
		t.Errorf("expected render_comments to default to true")
	}
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `this is not valid toml {{{{`},
		{"format", `default_format = "xml"`},
		{"log level", `log_level = "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := LoadFrom(configPath); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	created, err := CreateDefault(path)
	if err != nil || !created {
		t.Fatalf("CreateDefault: created=%v err=%v", created, err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}
	if cfg.DefaultFormat != "" || cfg.Opener != "" {
		t.Fatalf("default config should only contain comments, got %+v", cfg)
	}

	created, err = CreateDefault(path)
	if err != nil || created {
		t.Fatalf("second CreateDefault: created=%v err=%v", created, err)
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/tmp/x.toml"); got != "/tmp/x.toml" {
		t.Errorf("explicit path not honoured: %q", got)
	}
	if got := ResolveConfigPath("  "); filepath.Base(got) != "config.toml" {
		t.Errorf("expected default config.toml, got %q", got)
	}
}
