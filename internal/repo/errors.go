package repo

import "errors"

var (
	// ErrCollectionExists is returned when creating a collection whose name
	// is taken.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrCollectionNotFound is returned for operations on an unknown
	// collection.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrTagNotFound is returned when a looked-up tag is not set.
	ErrTagNotFound = errors.New("tag not found")

	// ErrNotURL is returned when a tag exists but cannot be opened because
	// its value is not a Url.
	ErrNotURL = errors.New("tag value is not a url")

	// ErrEntryNotFound is returned when a path has no entry.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrEntryExists is returned when a move would overwrite an entry.
	ErrEntryExists = errors.New("entry already exists")

	// ErrInvalidName is returned for an empty or non-UTF-8 collection name.
	ErrInvalidName = errors.New("invalid collection name")
)
