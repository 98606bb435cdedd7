package store

import (
	"github.com/aidanlsb/fsm/internal/paths"
	"github.com/aidanlsb/fsm/internal/repo"
)

// Editor applies path-addressed operations to a session's staged state.
// Paths are normalized against the root before they reach the repository.
type Editor struct {
	repo  *repo.Repository
	paths paths.Normalizer
}

// Editor returns an editor whose relative paths are interpreted against cwd.
func (s *Session) Editor(cwd string) *Editor {
	return &Editor{repo: s.staged, paths: s.handle.Normalizer(cwd)}
}

// Resolve turns path into a target, or returns the self scope when self is
// set. Read-only callers use it without a session.
func Resolve(n paths.Normalizer, path string, self bool) (repo.Target, error) {
	if self {
		return repo.Self(), nil
	}
	key, err := n.Key(path)
	if err != nil {
		return repo.Target{}, err
	}
	return repo.Path(key), nil
}

// Target resolves a path, or the self scope when self is set.
func (e *Editor) Target(path string, self bool) (repo.Target, error) {
	return Resolve(e.paths, path, self)
}

// CreateCollection adds an empty collection.
func (e *Editor) CreateCollection(name string) error {
	return e.repo.CreateCollection(name)
}

// DeleteCollection removes a collection. Entries of its members are kept.
func (e *Editor) DeleteCollection(name string) error {
	_, err := e.repo.DeleteCollection(name)
	return err
}

// Push normalizes every path and appends the new members. Nothing is added
// if any path fails to normalize.
func (e *Editor) Push(name string, ps ...string) (int, error) {
	if _, err := e.repo.Collection(name); err != nil {
		return 0, err
	}
	keys, err := e.paths.Keys(ps)
	if err != nil {
		return 0, err
	}
	return e.repo.Push(name, keys...)
}

// Pop normalizes every path and removes those that are members.
func (e *Editor) Pop(name string, ps ...string) (int, error) {
	if _, err := e.repo.Collection(name); err != nil {
		return 0, err
	}
	keys, err := e.paths.Keys(ps)
	if err != nil {
		return 0, err
	}
	return e.repo.Pop(name, keys...)
}
