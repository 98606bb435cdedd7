// Package repo holds the in-memory metadata repository: entries keyed by
// root-relative path, named collections, and the repository's own ("self")
// tags and comment.
//
// Nothing in this package touches the filesystem. Paths arrive already
// normalized to keys (see package paths) and persistence is done by package
// store.
package repo

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/aidanlsb/fsm/internal/tags"
)

// Format records which serialization a repository is stored with.
type Format string

const (
	FormatJSON       Format = "json"
	FormatJSONPretty Format = "json-pretty"
	FormatBinary     Format = "binary"
)

// Formats lists every format in discovery order.
var Formats = []Format{FormatJSON, FormatJSONPretty, FormatBinary}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (expected json, json-pretty or binary)", s)
}

// now is the clock used for created/updated stamps.
var now = func() time.Time {
	return time.Now().UTC()
}

// Tags maps a tag key to its value. A nil value is a bare tag.
type Tags map[string]*tags.Value

// Entry is the metadata attached to one path (or to the repository itself).
type Entry struct {
	Tags    Tags
	Comment string
	Created time.Time
	Updated *time.Time
}

func newEntry() *Entry {
	return &Entry{Tags: Tags{}, Created: now()}
}

// IsEmpty reports whether the entry carries no tags and no comment.
func (e *Entry) IsEmpty() bool {
	return len(e.Tags) == 0 && e.Comment == ""
}

// Modified returns the last update time, or the creation time.
func (e *Entry) Modified() time.Time {
	if e.Updated != nil {
		return *e.Updated
	}
	return e.Created
}

// TagKeys returns the entry's tag keys in sorted order.
func (e *Entry) TagKeys() []string {
	return slices.Sorted(maps.Keys(e.Tags))
}

func (e *Entry) touch() {
	t := now()
	e.Updated = &t
}

func (e *Entry) clone() *Entry {
	c := &Entry{
		Tags:    make(Tags, len(e.Tags)),
		Comment: e.Comment,
		Created: e.Created,
	}
	for k, v := range e.Tags {
		if v != nil {
			vv := *v
			c.Tags[k] = &vv
		} else {
			c.Tags[k] = nil
		}
	}
	if e.Updated != nil {
		u := *e.Updated
		c.Updated = &u
	}
	return c
}

// Collection is a named, ordered, duplicate-free list of keys.
type Collection struct {
	Members []string
}

// Contains reports whether key is a member.
func (c *Collection) Contains(key string) bool {
	return slices.Contains(c.Members, key)
}

// Repository is the full metadata state of one root.
type Repository struct {
	Format      Format
	Self        *Entry
	Entries     map[string]*Entry
	Collections map[string]*Collection
}

// New returns an empty repository stored with format.
func New(format Format) *Repository {
	return &Repository{
		Format:      format,
		Self:        newEntry(),
		Entries:     map[string]*Entry{},
		Collections: map[string]*Collection{},
	}
}

// Normalize fills in nil maps and slices left by decoding so that an empty
// repository has exactly one representation.
func (r *Repository) Normalize() {
	if r.Self == nil {
		r.Self = &Entry{}
	}
	if r.Self.Tags == nil {
		r.Self.Tags = Tags{}
	}
	if r.Entries == nil {
		r.Entries = map[string]*Entry{}
	}
	for _, e := range r.Entries {
		if e.Tags == nil {
			e.Tags = Tags{}
		}
	}
	if r.Collections == nil {
		r.Collections = map[string]*Collection{}
	}
	for name, c := range r.Collections {
		if c == nil {
			c = &Collection{}
			r.Collections[name] = c
		}
		if c.Members == nil {
			c.Members = []string{}
		}
	}
}

// Clone returns a deep copy. Commands stage their mutations on a clone and
// only persist it once every mutation succeeded.
func (r *Repository) Clone() *Repository {
	c := &Repository{
		Format:      r.Format,
		Self:        r.Self.clone(),
		Entries:     make(map[string]*Entry, len(r.Entries)),
		Collections: make(map[string]*Collection, len(r.Collections)),
	}
	for k, e := range r.Entries {
		c.Entries[k] = e.clone()
	}
	for name, coll := range r.Collections {
		c.Collections[name] = &Collection{Members: slices.Clone(coll.Members)}
	}
	return c
}

// EntryKeys returns every entry key in sorted order.
func (r *Repository) EntryKeys() []string {
	return slices.Sorted(maps.Keys(r.Entries))
}

// CollectionNames returns every collection name in sorted order.
func (r *Repository) CollectionNames() []string {
	return slices.Sorted(maps.Keys(r.Collections))
}
