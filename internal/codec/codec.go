// Package codec encodes a repository to and from its on-disk formats.
//
// There are three interchangeable codecs: compact JSON, indented JSON and a
// binary protobuf-wire encoding. All three carry the same logical state, so
// decoding any of them yields equal repositories.
package codec

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/aidanlsb/fsm/internal/repo"
)

// Codec converts a repository to bytes and back.
type Codec interface {
	Encode(r *repo.Repository) ([]byte, error)
	Decode(data []byte) (*repo.Repository, error)
}

// ErrDecode matches every DecodeError.
var ErrDecode = errors.New("failed to decode repository state")

// DecodeError reports persisted state that could not be decoded.
type DecodeError struct {
	Format repo.Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s repository state: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDecode) hold for any DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ErrInvalidText is returned by Encode when a key, value, comment or
// collection name is not valid UTF-8. JSON would replace the bytes and the
// formats would no longer agree.
var ErrInvalidText = errors.New("state holds text that is not valid UTF-8")

func checkText(r *repo.Repository) error {
	bad := func(what, s string) error {
		if utf8.ValidString(s) {
			return nil
		}
		return fmt.Errorf("%w: %s %q", ErrInvalidText, what, s)
	}
	checkEntry := func(e *repo.Entry) error {
		if err := bad("comment", e.Comment); err != nil {
			return err
		}
		for k, v := range e.Tags {
			if err := bad("tag key", k); err != nil {
				return err
			}
			if v == nil {
				continue
			}
			if err := bad("tag value", v.Text()); err != nil {
				return err
			}
		}
		return nil
	}

	if err := checkEntry(r.Self); err != nil {
		return err
	}
	for key, e := range r.Entries {
		if err := bad("path", key); err != nil {
			return err
		}
		if err := checkEntry(e); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	for name, c := range r.Collections {
		if err := bad("collection", name); err != nil {
			return err
		}
		for _, m := range c.Members {
			if err := bad("member", m); err != nil {
				return fmt.Errorf("collection %s: %w", name, err)
			}
		}
	}
	return nil
}

type entry struct {
	file  string
	codec Codec
}

// table is the single place formats are bound to codecs and file names.
var table = map[repo.Format]entry{
	repo.FormatJSON:       {file: "db.json", codec: jsonCodec{format: repo.FormatJSON}},
	repo.FormatJSONPretty: {file: "db.pretty.json", codec: jsonCodec{format: repo.FormatJSONPretty, indent: true}},
	repo.FormatBinary:     {file: "db.bin", codec: binaryCodec{}},
}

// For returns the codec for format.
func For(format repo.Format) (Codec, error) {
	e, ok := table[format]
	if !ok {
		return nil, fmt.Errorf("no codec for format %q", format)
	}
	return e.codec, nil
}

// FileName returns the state file name used for format.
func FileName(format repo.Format) string {
	return table[format].file
}
