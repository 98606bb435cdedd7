package repo

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// CreateCollection adds an empty collection.
func (r *Repository) CreateCollection(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidName, name)
	}
	if _, ok := r.Collections[name]; ok {
		return fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}
	r.Collections[name] = &Collection{Members: []string{}}
	return nil
}

// DeleteCollection removes a collection and returns its former members.
// Entries of the members are untouched.
func (r *Repository) DeleteCollection(name string) ([]string, error) {
	c, ok := r.Collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	delete(r.Collections, name)
	return c.Members, nil
}

// Collection returns the named collection.
func (r *Repository) Collection(name string) (*Collection, error) {
	c, ok := r.Collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return c, nil
}

// Push appends keys that are not yet members, in first-seen order, and
// returns how many were added.
func (r *Repository) Push(name string, keys ...string) (int, error) {
	c, err := r.Collection(name)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, key := range keys {
		if c.Contains(key) {
			continue
		}
		c.Members = append(c.Members, key)
		added++
	}
	return added, nil
}

// Pop removes the given members and returns how many were present. Keys
// that are not members are ignored.
func (r *Repository) Pop(name string, keys ...string) (int, error) {
	c, err := r.Collection(name)
	if err != nil {
		return 0, err
	}
	before := len(c.Members)
	c.Members = slices.DeleteFunc(c.Members, func(m string) bool {
		return slices.Contains(keys, m)
	})
	return before - len(c.Members), nil
}

// Retain drops members for which keep returns false and returns them.
func (r *Repository) Retain(name string, keep func(key string) bool) ([]string, error) {
	c, err := r.Collection(name)
	if err != nil {
		return nil, err
	}
	var dropped []string
	c.Members = slices.DeleteFunc(c.Members, func(m string) bool {
		if keep(m) {
			return false
		}
		dropped = append(dropped, m)
		return true
	})
	return dropped, nil
}

// replace renames a member in place, collapsing it if to is already present.
func (c *Collection) replace(from, to string) {
	i := slices.Index(c.Members, from)
	if i < 0 {
		return
	}
	if c.Contains(to) {
		c.Members = slices.Delete(c.Members, i, i+1)
		return
	}
	c.Members[i] = to
}

// MemberOf returns the sorted names of collections containing key.
func (r *Repository) MemberOf(key string) []string {
	var names []string
	for _, name := range r.CollectionNames() {
		if r.Collections[name].Contains(key) {
			names = append(names, name)
		}
	}
	return names
}
