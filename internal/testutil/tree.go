// Package testutil provides reusable test utilities for fsm integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/root"
)

// TestTree represents a temporary directory tree holding an fsm repository.
type TestTree struct {
	Path   string
	t      *testing.T
	format repo.Format
	bare   bool
	files  map[string]string
}

// NewTestTree creates a new test tree builder.
// Call Build() to create the actual directory.
func NewTestTree(t *testing.T) *TestTree {
	t.Helper()
	return &TestTree{
		t:      t,
		format: repo.FormatJSON,
		files:  make(map[string]string),
	}
}

// WithFormat sets the state file format used when the repository is
// initialized.
func (tr *TestTree) WithFormat(format repo.Format) *TestTree {
	tr.format = format
	return tr
}

// WithoutRepository leaves the tree uninitialized.
func (tr *TestTree) WithoutRepository() *TestTree {
	tr.bare = true
	return tr
}

// WithFile adds a file to the tree.
// The path is relative to the tree root.
func (tr *TestTree) WithFile(path, content string) *TestTree {
	tr.files[path] = content
	return tr
}

// Build creates the directory, writes all configured files and initializes
// the repository. Returns the TestTree for method chaining.
func (tr *TestTree) Build() *TestTree {
	tr.t.Helper()

	dir, err := filepath.EvalSymlinks(tr.t.TempDir())
	if err != nil {
		tr.t.Fatalf("failed to resolve temp dir: %v", err)
	}
	tr.Path = dir

	for path, content := range tr.files {
		tr.WriteFile(path, content)
	}

	if !tr.bare {
		if _, err := root.Init(tr.Path, tr.format); err != nil {
			tr.t.Fatalf("failed to init repository: %v", err)
		}
	}
	return tr
}

// WriteFile writes a file to the tree, creating directories as needed.
func (tr *TestTree) WriteFile(relPath, content string) {
	tr.t.Helper()
	fullPath := filepath.Join(tr.Path, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		tr.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		tr.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// Remove deletes a file or directory from the tree.
func (tr *TestTree) Remove(relPath string) {
	tr.t.Helper()
	if err := os.RemoveAll(filepath.Join(tr.Path, relPath)); err != nil {
		tr.t.Fatalf("failed to remove %s: %v", relPath, err)
	}
}

// ReadFile reads a file from the tree.
func (tr *TestTree) ReadFile(relPath string) string {
	tr.t.Helper()
	fullPath := filepath.Join(tr.Path, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		tr.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the tree.
func (tr *TestTree) FileExists(relPath string) bool {
	tr.t.Helper()
	_, err := os.Stat(filepath.Join(tr.Path, relPath))
	return err == nil
}

// StateFile returns the root-relative path of the repository's state file.
func (tr *TestTree) StateFile() string {
	tr.t.Helper()
	h, err := root.Locate(tr.Path)
	if err != nil {
		tr.t.Fatalf("failed to locate repository: %v", err)
	}
	rel, err := filepath.Rel(tr.Path, h.StatePath())
	if err != nil {
		tr.t.Fatalf("failed to relativize state path: %v", err)
	}
	return rel
}
