// Package atomicfile replaces files so that readers observe either the old
// content or the new content, never a partial write.
package atomicfile

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

const defaultPerm fs.FileMode = 0o644

// WriteFile writes data to path atomically.
//
// A zero perm keeps the mode of the file being replaced, or 0644 when there
// is none.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return WriteWith(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteWith lets write fill a sibling temp file, then moves it over path.
// On any failure path keeps its previous content and the temp file is
// removed.
func WriteWith(path string, perm os.FileMode, write func(w io.Writer) error) error {
	p, err := stage(path, modeFor(path, perm))
	if err != nil {
		return err
	}
	defer p.discard()

	buf := bufio.NewWriter(p.file)
	if err := write(buf); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	return p.commit()
}

func modeFor(path string, perm os.FileMode) os.FileMode {
	if perm != 0 {
		return perm
	}
	if st, err := os.Stat(path); err == nil {
		return st.Mode().Perm()
	}
	return defaultPerm
}

// pending is a temp file waiting to replace target.
type pending struct {
	target string
	file   *os.File
	done   bool
}

func stage(target string, perm os.FileMode) (*pending, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	// chmod is unsupported on some filesystems; the umask default stands then.
	_ = f.Chmod(perm)
	return &pending{target: target, file: f}, nil
}

func (p *pending) commit() error {
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := replace(p.file.Name(), p.target); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	p.done = true
	syncDir(filepath.Dir(p.target))
	return nil
}

// discard removes the temp file unless commit moved it into place.
func (p *pending) discard() {
	if p.done {
		return
	}
	_ = p.file.Close()
	_ = os.Remove(p.file.Name())
}

func replace(from, to string) error {
	err := os.Rename(from, to)
	if err == nil || runtime.GOOS != "windows" {
		return err
	}
	// Some Windows filesystems refuse to rename over an existing file.
	// The remove-and-retry window is not atomic.
	_ = os.Remove(to)
	if os.Rename(from, to) != nil {
		return err
	}
	return nil
}

// syncDir persists the rename itself. Directories cannot be synced on every
// platform, so errors are ignored.
func syncDir(dir string) {
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
}
