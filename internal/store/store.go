// Package store owns the load, stage and commit lifecycle of a repository.
//
// A Session holds the root's write lock for its whole lifetime, stages every
// mutation on a clone of the loaded state and persists the clone with a
// single atomic rename on Commit. Nothing reaches disk until Commit, so a
// failed batch leaves the previous state intact.
package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aidanlsb/fsm/internal/atomicfile"
	"github.com/aidanlsb/fsm/internal/codec"
	"github.com/aidanlsb/fsm/internal/filelock"
	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/root"
)

// ErrRepositoryBusy matches every BusyError.
var ErrRepositoryBusy = errors.New("repository is busy")

// BusyError is returned when another process holds the write lock.
type BusyError struct {
	LockPath string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("repository is busy: another fsm process holds %s; retry shortly", e.LockPath)
}

// Is makes errors.Is(err, ErrRepositoryBusy) hold.
func (e *BusyError) Is(target error) bool { return target == ErrRepositoryBusy }

// Retryable reports that the operation may succeed if attempted again.
func (e *BusyError) Retryable() bool { return true }

// Load reads and decodes the state file without taking the write lock.
// Writers replace the file by rename, so a reader always sees a complete
// state.
func Load(h *root.Handle) (*repo.Repository, error) {
	start := time.Now()

	c, err := codec.For(h.Format)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(h.StatePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", h.StatePath(), err)
	}
	r, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	if r.Format != h.Format {
		return nil, &codec.DecodeError{
			Format: h.Format,
			Err:    fmt.Errorf("state file records format %q", r.Format),
		}
	}

	slog.Debug("loaded repository",
		"path", h.StatePath(),
		"entries", len(r.Entries),
		"collections", len(r.Collections),
		"elapsed", time.Since(start))
	return r, nil
}

// Session is an exclusive, staged view of a repository.
type Session struct {
	handle *root.Handle
	lock   *filelock.Lock
	loaded *repo.Repository
	staged *repo.Repository
}

// Open takes the write lock and loads the current state. It fails with a
// BusyError instead of waiting when the lock is held.
func Open(h *root.Handle) (*Session, error) {
	lock, err := filelock.TryLock(h.LockPath())
	if err != nil {
		if errors.Is(err, filelock.ErrLocked) {
			return nil, &BusyError{LockPath: h.LockPath()}
		}
		return nil, err
	}

	r, err := Load(h)
	if err != nil {
		_ = lock.Release()
		return nil, err
	}

	return &Session{
		handle: h,
		lock:   lock,
		loaded: r,
		staged: r.Clone(),
	}, nil
}

// Repository returns the staged state. Mutations made through it are
// persisted by Commit.
func (s *Session) Repository() *repo.Repository {
	return s.staged
}

// Handle returns the root the session was opened on.
func (s *Session) Handle() *root.Handle {
	return s.handle
}

// Changed reports whether the staged state differs from what was loaded.
func (s *Session) Changed() bool {
	return !repo.Equal(s.loaded, s.staged)
}

// Commit persists the staged state atomically. Unchanged state is not
// rewritten.
func (s *Session) Commit() error {
	if s.lock == nil {
		return errors.New("session is closed")
	}
	if !s.Changed() {
		slog.Debug("repository unchanged, skipping write", "path", s.handle.StatePath())
		return nil
	}

	start := time.Now()
	c, err := codec.For(s.handle.Format)
	if err != nil {
		return err
	}
	data, err := c.Encode(s.staged)
	if err != nil {
		return err
	}

	err = atomicfile.WriteWith(s.handle.StatePath(), 0, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to persist %s: %w", s.handle.StatePath(), err)
	}

	s.loaded = s.staged.Clone()
	slog.Debug("saved repository",
		"path", s.handle.StatePath(),
		"bytes", len(data),
		"elapsed", time.Since(start))
	return nil
}

// Close releases the write lock. Uncommitted changes are discarded. Close is
// safe to call more than once.
func (s *Session) Close() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Release()
	s.lock = nil
	return err
}

// Update opens a session, hands fn the staged state and an editor rooted at
// cwd, and commits only if fn succeeds.
func Update(h *root.Handle, cwd string, fn func(s *Session, ed *Editor) error) error {
	s, err := Open(h)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s, s.Editor(cwd)); err != nil {
		return err
	}
	return s.Commit()
}

// Drop deletes the state file and the marker directory.
func Drop(h *root.Handle) error {
	lock, err := filelock.TryLock(h.LockPath())
	if err != nil {
		if errors.Is(err, filelock.ErrLocked) {
			return &BusyError{LockPath: h.LockPath()}
		}
		return err
	}

	if err := os.Remove(h.StatePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = lock.Release()
		return fmt.Errorf("failed to remove %s: %w", h.StatePath(), err)
	}
	// The lock file must be closed before its directory can go on Windows.
	if err := lock.Release(); err != nil {
		return err
	}
	if err := os.RemoveAll(h.MarkerDir()); err != nil {
		return fmt.Errorf("failed to remove %s: %w", h.MarkerDir(), err)
	}

	slog.Info("dropped repository", "dir", h.Dir)
	return nil
}
