package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fsm/internal/config"
	"github.com/aidanlsb/fsm/internal/logging"
	"github.com/aidanlsb/fsm/internal/repo"
)

func configData(path string, exists bool, cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"config_path":    path,
		"exists":         exists,
		"default_format": strings.TrimSpace(cfg.DefaultFormat),
		"opener":         strings.TrimSpace(cfg.Opener),
		"log_level":      strings.TrimSpace(cfg.LogLevel),
		"ui": map[string]interface{}{
			"accent":          strings.TrimSpace(cfg.UI.Accent),
			"render_comments": cfg.ShouldRenderComments(),
		},
	}
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the global config.toml",
		Long: `Manage the global config.toml.

Without a subcommand the effective configuration is shown.`,
		Args: argsWith(cobra.NoArgs),
		RunE: a.runConfigShow,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			Args:  argsWith(cobra.NoArgs),
			RunE:  a.runConfigShow,
		},
		a.configInitCmd(),
		a.configSetCmd(),
		a.configUnsetCmd(),
	)
	return cmd
}

func (a *app) runConfigShow(cmd *cobra.Command, args []string) error {
	if a.cfgErr != nil {
		return &configError{err: a.cfgErr}
	}
	exists, err := fileExists(a.cfgPath)
	if err != nil {
		return err
	}

	if a.jsonOutput {
		a.outputSuccess(configData(a.cfgPath, exists, a.cfg), nil)
		return nil
	}

	if !exists {
		a.printf("Config file does not exist: %s\n", a.cfgPath)
		a.println("Run 'fsm config init' to create it.")
		return nil
	}

	a.printf("config: %s\n", a.cfgPath)
	data, err := config.Encode(a.cfg)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		a.println()
		a.printf("%s", data)
	}
	return nil
}

func (a *app) configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a default config.toml if missing",
		Args:  argsWith(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := config.CreateDefault(a.cfgPath)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{
					"config_path": a.cfgPath,
					"created":     created,
				}, nil)
				return nil
			}
			if created {
				a.printf("Created config: %s\n", a.cfgPath)
			} else {
				a.printf("Config already exists: %s\n", a.cfgPath)
			}
			return nil
		},
	}
}

func (a *app) configSetCmd() *cobra.Command {
	var (
		defaultFormat  string
		openerCmd      string
		logLevel       string
		uiAccent       string
		renderComments bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set one or more config.toml fields",
		Args:  argsWith(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfgErr != nil {
				return &configError{err: a.cfgErr}
			}
			cfg := *a.cfg
			flags := cmd.Flags()
			changed := make([]string, 0, 5)

			if flags.Changed("default-format") {
				f, err := repo.ParseFormat(strings.TrimSpace(defaultFormat))
				if err != nil {
					return invalidInput(err)
				}
				cfg.DefaultFormat = string(f)
				changed = append(changed, "default_format")
			}
			if flags.Changed("opener") {
				value := strings.TrimSpace(openerCmd)
				if value == "" {
					return invalidInputf("opener cannot be empty; use 'fsm config unset --opener' to clear it")
				}
				cfg.Opener = value
				changed = append(changed, "opener")
			}
			if flags.Changed("log-level") {
				level := strings.ToLower(strings.TrimSpace(logLevel))
				if _, err := logging.ParseLevel(level); err != nil {
					return invalidInput(err)
				}
				cfg.LogLevel = level
				changed = append(changed, "log_level")
			}
			if flags.Changed("ui-accent") {
				value := strings.TrimSpace(uiAccent)
				if value == "" {
					return invalidInputf("ui-accent cannot be empty; use 'fsm config unset --ui-accent' to clear it")
				}
				cfg.UI.Accent = value
				changed = append(changed, "ui.accent")
			}
			if flags.Changed("render-comments") {
				v := renderComments
				cfg.UI.RenderComments = &v
				changed = append(changed, "ui.render_comments")
			}

			if len(changed) == 0 {
				return invalidInputf("no fields provided; set at least one --default-format/--opener/--log-level/--ui-accent/--render-comments")
			}
			return a.saveConfig(&cfg, changed, "changed")
		},
	}

	f := cmd.Flags()
	f.StringVar(&defaultFormat, "default-format", "", "Format for 'db init' (json, json-pretty, binary)")
	f.StringVar(&openerCmd, "opener", "", "Command used by 'open'")
	f.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&uiAccent, "ui-accent", "", "Accent color (ANSI 0-255 or #RRGGBB)")
	f.BoolVar(&renderComments, "render-comments", true, "Render comments as markdown on a terminal")
	return cmd
}

func (a *app) configUnsetCmd() *cobra.Command {
	var defaultFormat, openerCmd, logLevel, uiAccent, renderComments bool

	cmd := &cobra.Command{
		Use:   "unset",
		Short: "Clear one or more config.toml fields",
		Args:  argsWith(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfgErr != nil {
				return &configError{err: a.cfgErr}
			}
			exists, err := fileExists(a.cfgPath)
			if err != nil {
				return err
			}
			if !exists {
				return invalidInputf("config file not found: %s", a.cfgPath)
			}

			cfg := *a.cfg
			changed := make([]string, 0, 5)
			if defaultFormat {
				cfg.DefaultFormat = ""
				changed = append(changed, "default_format")
			}
			if openerCmd {
				cfg.Opener = ""
				changed = append(changed, "opener")
			}
			if logLevel {
				cfg.LogLevel = ""
				changed = append(changed, "log_level")
			}
			if uiAccent {
				cfg.UI.Accent = ""
				changed = append(changed, "ui.accent")
			}
			if renderComments {
				cfg.UI.RenderComments = nil
				changed = append(changed, "ui.render_comments")
			}

			if len(changed) == 0 {
				return invalidInputf("no fields selected; pass one or more unset flags")
			}
			return a.saveConfig(&cfg, changed, "cleared")
		},
	}

	f := cmd.Flags()
	f.BoolVar(&defaultFormat, "default-format", false, "Clear default_format")
	f.BoolVar(&openerCmd, "opener", false, "Clear opener")
	f.BoolVar(&logLevel, "log-level", false, "Clear log_level")
	f.BoolVar(&uiAccent, "ui-accent", false, "Clear ui.accent")
	f.BoolVar(&renderComments, "render-comments", false, "Clear ui.render_comments")
	return cmd
}

func (a *app) saveConfig(cfg *config.Config, changed []string, verb string) error {
	if err := cfg.Validate(); err != nil {
		return invalidInput(err)
	}
	if err := config.SaveTo(a.cfgPath, cfg); err != nil {
		return err
	}
	a.cfg = cfg

	if a.jsonOutput {
		data := configData(a.cfgPath, true, cfg)
		data[verb] = changed
		a.outputSuccess(data, nil)
		return nil
	}
	a.printf("Updated config: %s\n", a.cfgPath)
	a.printf("%s: %s\n", verb, strings.Join(changed, ", "))
	return nil
}
