// Package filelock provides a non-blocking exclusive advisory lock on a file.
package filelock

import (
	"errors"
	"fmt"
	"os"
)

// ErrLocked is returned when another process already holds the lock.
var ErrLocked = errors.New("file is locked by another process")

// Lock is a held lock. Release it exactly once.
type Lock struct {
	file *os.File
}

// TryLock opens (creating if needed) the file at path and takes an exclusive
// lock on it without waiting. It returns ErrLocked when the lock is held
// elsewhere.
func TryLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := lockFileExclusiveNonBlocking(f); err != nil {
		f.Close()
		if isWouldBlockError(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	return &Lock{file: f}, nil
}

// Release drops the lock and closes the file. The lock file itself is left
// in place; removing it would race with a process about to lock it.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
