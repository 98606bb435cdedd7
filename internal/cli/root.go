// Package cli implements the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fsm/internal/config"
	"github.com/aidanlsb/fsm/internal/logging"
	"github.com/aidanlsb/fsm/internal/opener"
	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/root"
	"github.com/aidanlsb/fsm/internal/store"
	"github.com/aidanlsb/fsm/internal/ui"
)

// app carries global flags and everything resolved from them. One app
// serves exactly one command invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	// Global flags
	jsonOutput bool
	verbose    bool
	debug      bool
	configPath string
	dir        string

	// Resolved values
	level   *slog.LevelVar
	cfg     *config.Config
	cfgPath string
	cfgErr  error
	cwd     string
	display *ui.DisplayContext
	opener  opener.Opener
	getenv  func(string) string
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		getenv: os.Getenv,
	}
}

// Execute runs the CLI against the process arguments.
func Execute() error {
	a := newApp(os.Stdout, os.Stderr)
	a.level = logging.Setup()
	a.display = ui.Detect(os.Stdout)
	return a.execute(os.Args[1:])
}

func (a *app) execute(args []string) error {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	err := cmd.Execute()
	if err != nil {
		a.reportError(err)
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsm",
		Short: "fsm - file system metadata",
		Long: `fsm attaches tags, comments and collections to files and directories
without touching the files themselves.

Metadata lives in a .fsm directory at the root of a tree, much like a version
control root; every command run below that directory uses it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := cmd.PersistentFlags()
	pf.BoolVar(&a.jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	pf.BoolVarP(&a.verbose, "verbose", "V", false, "Log progress to stderr")
	pf.BoolVar(&a.debug, "debug", false, "Log debug detail to stderr")
	pf.StringVar(&a.configPath, "config", "", "Path to config file")
	pf.StringVarP(&a.dir, "dir", "C", "", "Run as if fsm was started in this directory")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInput(err)
	})

	cmd.AddCommand(
		a.dbCmd(),
		a.setCmd(),
		a.getCmd(),
		a.openCmd(),
		a.collCmd(),
		a.mvCmd(),
		a.rmCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return cmd
}

// setup resolves config, logging, theme and working directory before any
// command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.verbose && a.debug {
		return invalidInputf("--verbose and --debug are mutually exclusive")
	}

	a.cfgPath = config.ResolveConfigPath(a.configPath)
	cfg, err := config.LoadFrom(a.cfgPath)
	if err != nil {
		if !underConfigCmd(cmd) {
			return &configError{err: err}
		}
		// config commands report the problem themselves.
		a.cfgErr = err
		cfg = &config.Config{}
	}
	a.cfg = cfg

	level, err := logging.Resolve(a.getenv(logging.EnvVar), a.debug, a.verbose, cfg.LogLevel)
	if err != nil {
		return invalidInput(err)
	}
	if a.level != nil {
		a.level.Set(level)
	}
	ui.ConfigureTheme(cfg.UI.Accent)

	if a.display == nil {
		a.display = ui.Plain()
	}
	if a.opener == nil {
		a.opener = opener.New(cfg.Opener)
	}

	return a.resolveCwd()
}

func (a *app) resolveCwd() error {
	if a.dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		a.cwd = wd
		return nil
	}
	abs, err := filepath.Abs(a.dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", a.dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return invalidInputf("%s is not a directory", a.dir)
	}
	a.cwd = abs
	return nil
}

func underConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" && c.Parent() != nil && !c.Parent().HasParent() {
			return true
		}
	}
	return false
}

// locate finds the root above the working directory.
func (a *app) locate() (*root.Handle, error) {
	return root.Locate(a.cwd)
}

// load reads the current state without taking the write lock.
func (a *app) load() (*root.Handle, *repo.Repository, error) {
	h, err := a.locate()
	if err != nil {
		return nil, nil, err
	}
	r, err := store.Load(h)
	if err != nil {
		return nil, nil, err
	}
	return h, r, nil
}

// target resolves path, or the self scope, for read-only commands.
func (a *app) target(h *root.Handle, path string, self bool) (repo.Target, error) {
	return store.Resolve(h.Normalizer(a.cwd), path, self)
}

// edit runs fn inside a write session. A command applies all of its changes
// or none of them.
func (a *app) edit(fn func(s *store.Session, ed *store.Editor) error) error {
	h, err := a.locate()
	if err != nil {
		return err
	}
	return store.Update(h, a.cwd, fn)
}

// printf writes human-readable output. It is a no-op in JSON mode.
func (a *app) printf(format string, args ...interface{}) {
	if a.jsonOutput {
		return
	}
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(args ...interface{}) {
	if a.jsonOutput {
		return
	}
	fmt.Fprintln(a.out, args...)
}

// exists reports whether the file behind a key is present. Errors other than
// not-exist count as present so nothing is pruned on a transient failure.
func exists(h *root.Handle, key string) bool {
	_, err := os.Stat(h.Normalizer(h.Dir).Abs(key))
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
