// Package paths converts filesystem paths into root-relative keys.
//
// A key is the slash-separated path of a file or directory relative to the
// repository root, after resolving "." and ".." segments and symlinks. The root
// directory itself is the key ".".
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// RootKey is the key of the root directory itself.
const RootKey = "."

// ErrPathOutsideRoot is returned when a path resolves outside the root.
var ErrPathOutsideRoot = errors.New("path is outside the repository root")

// ErrInvalidPath is returned for paths whose key would not be valid UTF-8.
// Such keys cannot be stored losslessly in the JSON formats.
var ErrInvalidPath = errors.New("path is not valid UTF-8")

// Normalizer maps user-supplied paths to keys for one root.
//
// Root must be absolute with its symlinks already resolved; Cwd is the
// directory relative paths are interpreted against.
type Normalizer struct {
	Root string
	Cwd  string
}

// Key returns the key for p.
func (n Normalizer) Key(p string) (string, error) {
	if p == "" {
		p = "."
	}
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(n.Cwd, abs)
	}
	abs = filepath.Clean(abs)

	resolved, err := ResolveSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}

	rel, err := filepath.Rel(n.Root, resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, p)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, p)
	}
	if !utf8.ValidString(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return rel, nil
}

// Keys normalizes every path, stopping at the first failure.
func (n Normalizer) Keys(ps []string) ([]string, error) {
	keys := make([]string, 0, len(ps))
	for _, p := range ps {
		k, err := n.Key(p)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Abs returns the absolute filesystem path for a key.
func (n Normalizer) Abs(key string) string {
	if key == RootKey {
		return n.Root
	}
	return filepath.Join(n.Root, filepath.FromSlash(key))
}

// Display renders a key relative to the working directory for output.
func (n Normalizer) Display(key string) string {
	cwd, err := ResolveSymlinks(filepath.Clean(n.Cwd))
	if err != nil {
		return key
	}
	rel, err := filepath.Rel(cwd, n.Abs(key))
	if err != nil {
		return key
	}
	return filepath.ToSlash(rel)
}

// ResolveSymlinks evaluates symlinks in abs. When abs does not exist, the
// longest existing prefix is resolved and the remaining segments are appended
// unchanged, so keys can be created for files that are not there yet.
func ResolveSymlinks(abs string) (string, error) {
	var missing []string
	current := abs
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Nothing along the path exists; fall back to the lexical path.
			return abs, nil
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}
