package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/fsm/internal/codec"
	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/root"
	"github.com/aidanlsb/fsm/internal/store"
	"github.com/aidanlsb/fsm/internal/ui"
)

var _ pflag.Value = (*formatFlag)(nil)

// formatFlag is a pflag.Value restricted to the known formats.
type formatFlag struct {
	format repo.Format
}

func (f *formatFlag) String() string { return string(f.format) }

func (f *formatFlag) Set(s string) error {
	format, err := repo.ParseFormat(s)
	if err != nil {
		return err
	}
	f.format = format
	return nil
}

func (f *formatFlag) Type() string { return "format" }

func (a *app) dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Create, inspect and remove the repository",
	}
	cmd.AddCommand(a.dbInitCmd(), a.dbDumpCmd(), a.dbDropCmd())
	return cmd
}

func (a *app) dbInitCmd() *cobra.Command {
	var format formatFlag

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a repository in the current (or given) directory",
		Long: `Creates the .fsm marker directory and an empty state file.

The format is fixed for the lifetime of the repository:
  json         compact JSON (db.json)
  json-pretty  indented JSON (db.pretty.json)
  binary       protobuf wire encoding (db.bin)

Without --format, default_format from the config file is used, then json.
Initializing inside an existing repository is rejected.`,
		Args: argsWith(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format.format == "" {
				f, err := a.cfg.Format()
				if err != nil {
					return &configError{err: err}
				}
				format.format = f
			}

			dir := a.cwd
			if len(args) == 1 {
				dir = a.abs(args[0])
			}

			h, err := root.Init(dir, format.format)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{
					"root":       h.Dir,
					"format":     h.Format,
					"state_file": h.StatePath(),
				}, nil)
				return nil
			}
			a.println(ui.Successf("Initialized %s repository in %s", h.Format, ui.FilePath(h.Dir)))
			return nil
		},
	}
	cmd.Flags().Var(&format, "format", "State format: json, json-pretty or binary")
	return cmd
}

func (a *app) dbDumpCmd() *cobra.Command {
	var asYAML, pretty bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the full repository state",
		Long: `Prints the loaded state as compact JSON, indented JSON (--pretty) or YAML
(--yaml), whatever format it is stored in.`,
		Args: argsWith(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asYAML && pretty {
				return invalidInputf("--yaml and --pretty cannot be combined")
			}
			_, r, err := a.load()
			if err != nil {
				return err
			}

			if a.jsonOutput {
				data, err := encodeJSON(r, false)
				if err != nil {
					return err
				}
				a.outputSuccess(json.RawMessage(data), &Meta{Count: len(r.Entries)})
				return nil
			}

			var data []byte
			if asYAML {
				data, err = yaml.Marshal(toYAMLState(r))
			} else {
				data, err = encodeJSON(r, pretty)
			}
			if err != nil {
				return fmt.Errorf("failed to encode dump: %w", err)
			}
			_, err = a.out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print as YAML")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	return cmd
}

// encodeJSON renders r with the JSON codecs regardless of its stored format.
func encodeJSON(r *repo.Repository, pretty bool) ([]byte, error) {
	format := repo.FormatJSON
	if pretty {
		format = repo.FormatJSONPretty
	}
	c, err := codec.For(format)
	if err != nil {
		return nil, err
	}
	return c.Encode(r)
}

type yamlState struct {
	Format      string               `yaml:"format"`
	Tags        map[string]any       `yaml:"tags"`
	Comment     string               `yaml:"comment,omitempty"`
	Created     time.Time            `yaml:"created"`
	Updated     *time.Time           `yaml:"updated,omitempty"`
	Files       map[string]yamlEntry `yaml:"files"`
	Collections map[string][]string  `yaml:"collections"`
}

type yamlEntry struct {
	Tags    map[string]any `yaml:"tags"`
	Comment string         `yaml:"comment,omitempty"`
	Created time.Time      `yaml:"created"`
	Updated *time.Time     `yaml:"updated,omitempty"`
}

func toYAMLState(r *repo.Repository) yamlState {
	out := yamlState{
		Format:      string(r.Format),
		Tags:        toYAMLTags(r.Self.Tags),
		Comment:     r.Self.Comment,
		Created:     r.Self.Created,
		Updated:     r.Self.Updated,
		Files:       make(map[string]yamlEntry, len(r.Entries)),
		Collections: make(map[string][]string, len(r.Collections)),
	}
	for key, e := range r.Entries {
		out.Files[key] = yamlEntry{
			Tags:    toYAMLTags(e.Tags),
			Comment: e.Comment,
			Created: e.Created,
			Updated: e.Updated,
		}
	}
	for name, c := range r.Collections {
		out.Collections[name] = c.Members
	}
	return out
}

// toYAMLTags mirrors the JSON layout: {kind: value}, or null for a bare tag.
func toYAMLTags(t repo.Tags) map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		j := toValueJSON(v)
		if j == nil {
			out[k] = nil
			continue
		}
		out[k] = map[string]any{j.Kind: j.Value}
	}
	return out
}

func (a *app) dbDropCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Delete the repository and all of its metadata",
		Args:  argsWith(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errConfirmationRequired
			}
			h, err := a.locate()
			if err != nil {
				return err
			}
			if err := store.Drop(h); err != nil {
				return err
			}

			if a.jsonOutput {
				a.outputSuccess(map[string]interface{}{"root": h.Dir, "dropped": true}, nil)
				return nil
			}
			a.println(ui.Successf("Dropped repository in %s", ui.FilePath(h.Dir)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}

// argsWith marks positional argument errors as input errors.
func argsWith(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return invalidInput(err)
		}
		return nil
	}
}

// abs resolves p against the working directory.
func (a *app) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.cwd, p)
}
