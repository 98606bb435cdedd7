// Package root discovers and creates the metadata root: the nearest ancestor
// directory holding a .fsm marker directory.
package root

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aidanlsb/fsm/internal/atomicfile"
	"github.com/aidanlsb/fsm/internal/codec"
	"github.com/aidanlsb/fsm/internal/paths"
	"github.com/aidanlsb/fsm/internal/repo"
)

// MarkerName is the marker directory created at the root.
const MarkerName = ".fsm"

// lockName sits next to the state file and is never part of the state.
const lockName = "db.lock"

var (
	ErrRootNotFound       = errors.New("no fsm repository found (run 'fsm db init')")
	ErrAlreadyInitialized = errors.New("an fsm repository already exists")
)

// Handle identifies a located root. It is passed explicitly to everything
// that needs to know where the repository lives.
type Handle struct {
	// Dir is the root directory, with symlinks resolved.
	Dir string
	// Format is the format marker, taken from the state file's name.
	Format repo.Format
}

// MarkerDir returns the .fsm directory.
func (h *Handle) MarkerDir() string {
	return filepath.Join(h.Dir, MarkerName)
}

// StatePath returns the state file for the recorded format.
func (h *Handle) StatePath() string {
	return filepath.Join(h.MarkerDir(), codec.FileName(h.Format))
}

// LockPath returns the lock file guarding writes to the state file.
func (h *Handle) LockPath() string {
	return filepath.Join(h.MarkerDir(), lockName)
}

// Normalizer returns a path normalizer anchored at the root for a caller
// working in cwd.
func (h *Handle) Normalizer(cwd string) paths.Normalizer {
	return paths.Normalizer{Root: h.Dir, Cwd: cwd}
}

// Locate searches start and each of its ancestors, closest first, for a
// marker directory. It fails with ErrRootNotFound at the filesystem root.
func Locate(start string) (*Handle, error) {
	dir, err := resolveDir(start)
	if err != nil {
		return nil, err
	}

	rootDir, ok := findMarker(dir)
	if !ok {
		return nil, fmt.Errorf("%w: searched from %s", ErrRootNotFound, dir)
	}

	format, err := discoverFormat(filepath.Join(rootDir, MarkerName))
	if err != nil {
		return nil, err
	}

	slog.Debug("located root", "dir", rootDir, "format", format)
	return &Handle{Dir: rootDir, Format: format}, nil
}

// Init creates the marker in dir and persists an empty repository in format.
// It refuses to nest inside an existing repository.
func Init(dir string, format repo.Format) (*Handle, error) {
	c, err := codec.For(format)
	if err != nil {
		return nil, err
	}

	dir, err = resolveDir(dir)
	if err != nil {
		return nil, err
	}
	if existing, ok := findMarker(dir); ok {
		return nil, fmt.Errorf("%w at %s", ErrAlreadyInitialized, existing)
	}

	h := &Handle{Dir: dir, Format: format}
	if err := os.Mkdir(h.MarkerDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", h.MarkerDir(), err)
	}

	data, err := c.Encode(repo.New(format))
	if err != nil {
		return nil, err
	}
	if err := atomicfile.WriteFile(h.StatePath(), data, 0o644); err != nil {
		_ = os.RemoveAll(h.MarkerDir())
		return nil, fmt.Errorf("failed to write %s: %w", h.StatePath(), err)
	}

	slog.Info("initialized repository", "dir", dir, "format", format)
	return h, nil
}

func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return resolved, nil
}

// findMarker walks up from dir until a marker directory is found or the
// filesystem root is passed.
func findMarker(dir string) (string, bool) {
	current := dir
	for {
		info, err := os.Stat(filepath.Join(current, MarkerName))
		if err == nil && info.IsDir() {
			return current, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// discoverFormat reads the format marker off the state file present in the
// marker directory. Exactly one state file must exist.
func discoverFormat(markerDir string) (repo.Format, error) {
	var found []repo.Format
	for _, f := range repo.Formats {
		info, err := os.Stat(filepath.Join(markerDir, codec.FileName(f)))
		if err == nil && info.Mode().IsRegular() {
			found = append(found, f)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %s holds no state file", ErrRootNotFound, markerDir)
	case 1:
		return found[0], nil
	default:
		return "", &codec.DecodeError{
			Format: found[0],
			Err:    fmt.Errorf("%s holds more than one state file", markerDir),
		}
	}
}
