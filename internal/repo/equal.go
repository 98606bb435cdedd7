package repo

import (
	"slices"
	"time"
)

// Equal reports whether two repositories hold the same logical state.
// Timestamps compare by instant, not by location.
func Equal(a, b *Repository) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Format != b.Format || !entryEqual(a.Self, b.Self) {
		return false
	}
	if len(a.Entries) != len(b.Entries) || len(a.Collections) != len(b.Collections) {
		return false
	}
	for k, ea := range a.Entries {
		eb, ok := b.Entries[k]
		if !ok || !entryEqual(ea, eb) {
			return false
		}
	}
	for name, ca := range a.Collections {
		cb, ok := b.Collections[name]
		if !ok || !slices.Equal(ca.Members, cb.Members) {
			return false
		}
	}
	return true
}

func entryEqual(a, b *Entry) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Comment != b.Comment || !a.Created.Equal(b.Created) || !timePtrEqual(a.Updated, b.Updated) {
		return false
	}
	if len(a.Tags) != len(b.Tags) {
		return false
	}
	for k, va := range a.Tags {
		vb, ok := b.Tags[k]
		if !ok {
			return false
		}
		if (va == nil) != (vb == nil) {
			return false
		}
		if va != nil && *va != *vb {
			return false
		}
	}
	return true
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
