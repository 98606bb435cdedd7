package repo

import (
	"fmt"
	"net/url"

	"github.com/aidanlsb/fsm/internal/tags"
)

// SelfName is how the repository's own scope is displayed.
const SelfName = "@self"

// Target addresses either one path's entry or the repository itself.
type Target struct {
	Self bool
	Key  string
}

// Self targets the repository's own tags and comment.
func Self() Target { return Target{Self: true} }

// Path targets the entry for a normalized key.
func Path(key string) Target { return Target{Key: key} }

func (t Target) String() string {
	if t.Self {
		return SelfName
	}
	return t.Key
}

// Lookup returns the entry for t without creating it.
func (r *Repository) Lookup(t Target) (*Entry, bool) {
	if t.Self {
		return r.Self, true
	}
	e, ok := r.Entries[t.Key]
	return e, ok
}

// edit runs fn against the entry for t, creating it when create is set.
// fn reports whether it changed anything; only then is the entry stamped.
// Path entries left empty are pruned.
func (r *Repository) edit(t Target, create bool, fn func(e *Entry) bool) {
	e, ok := r.Lookup(t)
	created := false
	if !ok {
		if !create {
			return
		}
		e = newEntry()
		created = true
	}

	if !fn(e) {
		return
	}
	if !created {
		e.touch()
	}

	if t.Self {
		return
	}
	if e.IsEmpty() {
		delete(r.Entries, t.Key)
		return
	}
	r.Entries[t.Key] = e
}

// SetTag inserts or overwrites a tag, creating the entry if needed.
func (r *Repository) SetTag(t Target, a tags.Assignment) {
	r.edit(t, true, func(e *Entry) bool {
		e.Tags[a.Key] = a.Value
		return true
	})
}

// RemoveTag deletes a tag. Removing an absent tag is a no-op.
func (r *Repository) RemoveTag(t Target, key string) {
	r.edit(t, false, func(e *Entry) bool {
		if _, ok := e.Tags[key]; !ok {
			return false
		}
		delete(e.Tags, key)
		return true
	})
}

// ClearTags removes every tag from the entry.
func (r *Repository) ClearTags(t Target) {
	r.edit(t, false, func(e *Entry) bool {
		if len(e.Tags) == 0 {
			return false
		}
		e.Tags = Tags{}
		return true
	})
}

// SetComment overwrites the comment, creating the entry if needed. An empty
// text clears the comment.
func (r *Repository) SetComment(t Target, text string) {
	if text == "" {
		r.RemoveComment(t)
		return
	}
	r.edit(t, true, func(e *Entry) bool {
		e.Comment = text
		return true
	})
}

// RemoveComment clears the comment. Clearing an absent comment is a no-op.
func (r *Repository) RemoveComment(t Target) {
	r.edit(t, false, func(e *Entry) bool {
		if e.Comment == "" {
			return false
		}
		e.Comment = ""
		return true
	})
}

// GetTag resolves a tag on t. A bare tag returns a nil value and no error.
func (r *Repository) GetTag(t Target, key string) (*tags.Value, error) {
	e, ok := r.Lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrTagNotFound, key, t)
	}
	v, ok := e.Tags[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrTagNotFound, key, t)
	}
	return v, nil
}

// OpenableURL resolves a tag that must hold a Url.
func (r *Repository) OpenableURL(t Target, key string) (*url.URL, error) {
	v, err := r.GetTag(t, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s on %s has no value", ErrNotURL, key, t)
	}
	u, ok := v.AsURL()
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s is %s", ErrNotURL, key, t, v.Kind())
	}
	return u, nil
}

// DeleteEntry removes the entry for key. It reports whether one existed.
func (r *Repository) DeleteEntry(key string) bool {
	if _, ok := r.Entries[key]; !ok {
		return false
	}
	delete(r.Entries, key)
	return true
}

// PruneEntries deletes every entry for which keep returns false and returns
// the deleted keys in sorted order.
func (r *Repository) PruneEntries(keep func(key string) bool) []string {
	var removed []string
	for _, key := range r.EntryKeys() {
		if !keep(key) {
			delete(r.Entries, key)
			removed = append(removed, key)
		}
	}
	return removed
}

// MovePart selects what MoveEntry transfers.
type MovePart int

const (
	MoveAll MovePart = iota
	MoveTags
	MoveComment
)

// MoveEntry transfers metadata from one key to another and rewrites
// collection memberships of from to to. Without force it refuses to write
// onto an existing entry; with force incoming tags overwrite and an incoming
// comment replaces the existing one.
func (r *Repository) MoveEntry(from, to string, part MovePart, force bool) error {
	src, ok := r.Entries[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, from)
	}
	if from == to {
		return nil
	}
	if _, exists := r.Entries[to]; exists && !force {
		return fmt.Errorf("%w: %s", ErrEntryExists, to)
	}

	moveTags := part == MoveAll || part == MoveTags
	moveComment := part == MoveAll || part == MoveComment

	r.edit(Path(to), true, func(dst *Entry) bool {
		changed := false
		if moveTags {
			for k, v := range src.Tags {
				dst.Tags[k] = v
				changed = true
			}
		}
		if moveComment && src.Comment != "" {
			dst.Comment = src.Comment
			changed = true
		}
		return changed
	})

	r.edit(Path(from), false, func(e *Entry) bool {
		changed := false
		if moveTags && len(e.Tags) > 0 {
			e.Tags = Tags{}
			changed = true
		}
		if moveComment && e.Comment != "" {
			e.Comment = ""
			changed = true
		}
		return changed
	})

	if part == MoveAll {
		for _, c := range r.Collections {
			c.replace(from, to)
		}
	}
	return nil
}
