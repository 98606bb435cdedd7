package codec

import (
	"bytes"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/tags"
)

// binaryMagic prefixes every binary state file. The last byte is the layout
// version.
var binaryMagic = []byte{'F', 'S', 'M', 0x01}

// Field numbers of the binary layout. The payload after the magic is a valid
// protobuf message:
//
//	message State      { string format = 1; Entry self = 2; repeated File files = 3; repeated Collection collections = 4; }
//	message File       { string path = 1; Entry entry = 2; }
//	message Entry      { repeated Tag tags = 1; string comment = 2; Timestamp created = 3; Timestamp updated = 4; }
//	message Tag        { string key = 1; Value value = 2; }  // value absent: bare tag
//	message Value      { uint32 kind = 1; sint64 int = 2; bool bool = 3; string text = 4; }
//	message Timestamp  { int64 seconds = 1; int32 nanos = 2; }
//	message Collection { string name = 1; repeated string members = 2; }
const (
	stateFormat      protowire.Number = 1
	stateSelf        protowire.Number = 2
	stateFiles       protowire.Number = 3
	stateCollections protowire.Number = 4

	filePath  protowire.Number = 1
	fileEntry protowire.Number = 2

	entryTags    protowire.Number = 1
	entryComment protowire.Number = 2
	entryCreated protowire.Number = 3
	entryUpdated protowire.Number = 4

	tagKey   protowire.Number = 1
	tagValue protowire.Number = 2

	valueKind protowire.Number = 1
	valueInt  protowire.Number = 2
	valueBool protowire.Number = 3
	valueText protowire.Number = 4

	tsSeconds protowire.Number = 1
	tsNanos   protowire.Number = 2

	collName    protowire.Number = 1
	collMembers protowire.Number = 2
)

type binaryCodec struct{}

func (binaryCodec) Encode(r *repo.Repository) ([]byte, error) {
	if err := checkText(r); err != nil {
		return nil, err
	}
	b := append([]byte(nil), binaryMagic...)

	b = appendString(b, stateFormat, string(r.Format))
	b = appendMessage(b, stateSelf, appendEntry(nil, r.Self))

	for _, key := range r.EntryKeys() {
		var f []byte
		f = appendString(f, filePath, key)
		f = appendMessage(f, fileEntry, appendEntry(nil, r.Entries[key]))
		b = appendMessage(b, stateFiles, f)
	}

	for _, name := range r.CollectionNames() {
		var c []byte
		c = appendString(c, collName, name)
		for _, m := range r.Collections[name].Members {
			c = appendString(c, collMembers, m)
		}
		b = appendMessage(b, stateCollections, c)
	}
	return b, nil
}

func appendEntry(b []byte, e *repo.Entry) []byte {
	for _, k := range e.TagKeys() {
		var t []byte
		t = appendString(t, tagKey, k)
		if v := e.Tags[k]; v != nil {
			t = appendMessage(t, tagValue, appendValue(nil, *v))
		}
		b = appendMessage(b, entryTags, t)
	}
	if e.Comment != "" {
		b = appendString(b, entryComment, e.Comment)
	}
	b = appendMessage(b, entryCreated, appendTimestamp(nil, e.Created))
	if e.Updated != nil {
		b = appendMessage(b, entryUpdated, appendTimestamp(nil, *e.Updated))
	}
	return b
}

func appendValue(b []byte, v tags.Value) []byte {
	b = protowire.AppendTag(b, valueKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(v.Kind()))
	switch v.Kind() {
	case tags.KindInt:
		n, _ := v.AsInt()
		b = protowire.AppendTag(b, valueInt, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(n))
	case tags.KindBool:
		x, _ := v.AsBool()
		b = protowire.AppendTag(b, valueBool, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(x))
	default:
		b = appendString(b, valueText, v.Text())
	}
	return b
}

func appendTimestamp(b []byte, t time.Time) []byte {
	b = protowire.AppendTag(b, tsSeconds, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Unix()))
	b = protowire.AppendTag(b, tsNanos, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Nanosecond()))
	return b
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func (binaryCodec) Decode(data []byte) (*repo.Repository, error) {
	r, err := decodeState(data)
	if err != nil {
		return nil, &DecodeError{Format: repo.FormatBinary, Err: err}
	}
	r.Normalize()
	return r, nil
}

func decodeState(data []byte) (*repo.Repository, error) {
	if !bytes.HasPrefix(data, binaryMagic[:3]) {
		return nil, errors.New("missing binary state header")
	}
	if len(data) < len(binaryMagic) || data[3] != binaryMagic[3] {
		return nil, fmt.Errorf("unsupported binary layout version")
	}

	r := &repo.Repository{
		Entries:     map[string]*repo.Entry{},
		Collections: map[string]*repo.Collection{},
	}
	sawFormat := false
	err := eachField(data[len(binaryMagic):], func(num protowire.Number, f field) error {
		switch num {
		case stateFormat:
			s, err := f.str()
			if err != nil {
				return err
			}
			if r.Format, err = repo.ParseFormat(s); err != nil {
				return err
			}
			sawFormat = true
		case stateSelf:
			msg, err := f.message()
			if err != nil {
				return err
			}
			if r.Self, err = decodeEntry(msg); err != nil {
				return fmt.Errorf("self: %w", err)
			}
		case stateFiles:
			msg, err := f.message()
			if err != nil {
				return err
			}
			key, e, err := decodeFile(msg)
			if err != nil {
				return err
			}
			if _, dup := r.Entries[key]; dup {
				return fmt.Errorf("duplicate entry %q", key)
			}
			r.Entries[key] = e
		case stateCollections:
			msg, err := f.message()
			if err != nil {
				return err
			}
			name, c, err := decodeCollection(msg)
			if err != nil {
				return err
			}
			if _, dup := r.Collections[name]; dup {
				return fmt.Errorf("duplicate collection %q", name)
			}
			r.Collections[name] = c
		default:
			return unknownField(num)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !sawFormat {
		return nil, errors.New("missing format marker")
	}
	if r.Self == nil {
		return nil, errors.New("missing self entry")
	}
	return r, nil
}

func decodeFile(b []byte) (string, *repo.Entry, error) {
	var (
		key string
		e   *repo.Entry
	)
	err := eachField(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case filePath:
			key, err = f.str()
		case fileEntry:
			var msg []byte
			if msg, err = f.message(); err == nil {
				e, err = decodeEntry(msg)
			}
		default:
			err = unknownField(num)
		}
		return err
	})
	if err != nil {
		return "", nil, err
	}
	if key == "" || e == nil {
		return "", nil, errors.New("file record missing path or entry")
	}
	return key, e, nil
}

func decodeEntry(b []byte) (*repo.Entry, error) {
	e := &repo.Entry{Tags: repo.Tags{}}
	sawCreated := false
	err := eachField(b, func(num protowire.Number, f field) error {
		switch num {
		case entryTags:
			msg, err := f.message()
			if err != nil {
				return err
			}
			k, v, err := decodeTag(msg)
			if err != nil {
				return err
			}
			if _, dup := e.Tags[k]; dup {
				return fmt.Errorf("duplicate tag %q", k)
			}
			e.Tags[k] = v
		case entryComment:
			s, err := f.str()
			if err != nil {
				return err
			}
			e.Comment = s
		case entryCreated, entryUpdated:
			msg, err := f.message()
			if err != nil {
				return err
			}
			t, err := decodeTimestamp(msg)
			if err != nil {
				return err
			}
			if num == entryCreated {
				e.Created = t
				sawCreated = true
			} else {
				e.Updated = &t
			}
		default:
			return unknownField(num)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !sawCreated {
		return nil, errors.New("entry missing created timestamp")
	}
	return e, nil
}

func decodeTag(b []byte) (string, *tags.Value, error) {
	var (
		key string
		val *tags.Value
	)
	err := eachField(b, func(num protowire.Number, f field) error {
		switch num {
		case tagKey:
			s, err := f.str()
			key = s
			return err
		case tagValue:
			msg, err := f.message()
			if err != nil {
				return err
			}
			v, err := decodeValue(msg)
			if err != nil {
				return fmt.Errorf("tag %q: %w", key, err)
			}
			val = &v
			return nil
		}
		return unknownField(num)
	})
	if err != nil {
		return "", nil, err
	}
	if key == "" {
		return "", nil, errors.New("tag record missing key")
	}
	return key, val, nil
}

func decodeValue(b []byte) (tags.Value, error) {
	var (
		kind  tags.Kind
		n     int64
		x     bool
		text  string
		seenN bool
		seenX bool
	)
	err := eachField(b, func(num protowire.Number, f field) error {
		switch num {
		case valueKind:
			k, err := f.varint()
			if err != nil {
				return err
			}
			if k > uint64(tags.KindURL) {
				return fmt.Errorf("unknown value kind %d", k)
			}
			kind = tags.Kind(k)
		case valueInt:
			v, err := f.varint()
			if err != nil {
				return err
			}
			n, seenN = protowire.DecodeZigZag(v), true
		case valueBool:
			v, err := f.varint()
			if err != nil {
				return err
			}
			x, seenX = protowire.DecodeBool(v), true
		case valueText:
			s, err := f.str()
			if err != nil {
				return err
			}
			text = s
		default:
			return unknownField(num)
		}
		return nil
	})
	if err != nil {
		return tags.Value{}, err
	}

	switch kind {
	case tags.KindInt:
		if !seenN {
			return tags.Value{}, errors.New("int value missing payload")
		}
		return tags.Int(n), nil
	case tags.KindBool:
		if !seenX {
			return tags.Value{}, errors.New("bool value missing payload")
		}
		return tags.Bool(x), nil
	default:
		return tags.Construct(kind, text)
	}
}

func decodeTimestamp(b []byte) (time.Time, error) {
	var sec, nsec int64
	err := eachField(b, func(num protowire.Number, f field) error {
		v, err := f.varint()
		if err != nil {
			return err
		}
		switch num {
		case tsSeconds:
			sec = int64(v)
		case tsNanos:
			nsec = int64(int32(v))
		default:
			return unknownField(num)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	if nsec < 0 || nsec >= int64(time.Second) {
		return time.Time{}, fmt.Errorf("timestamp nanos out of range: %d", nsec)
	}
	return time.Unix(sec, nsec).UTC(), nil
}

func decodeCollection(b []byte) (string, *repo.Collection, error) {
	var name string
	c := &repo.Collection{Members: []string{}}
	err := eachField(b, func(num protowire.Number, f field) error {
		s, err := f.str()
		if err != nil {
			return err
		}
		switch num {
		case collName:
			name = s
		case collMembers:
			if c.Contains(s) {
				return fmt.Errorf("duplicate member %q", s)
			}
			c.Members = append(c.Members, s)
		default:
			return unknownField(num)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	if name == "" {
		return "", nil, errors.New("collection record missing name")
	}
	return name, c, nil
}

// field is one undecoded field value.
type field struct {
	typ protowire.Type
	raw []byte // bytes payload for BytesType
	num uint64 // payload for VarintType
}

func (f field) varint() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, fmt.Errorf("expected varint, got wire type %d", f.typ)
	}
	return f.num, nil
}

func (f field) message() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, fmt.Errorf("expected message, got wire type %d", f.typ)
	}
	return f.raw, nil
}

func (f field) str() (string, error) {
	b, err := f.message()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("string %q is not valid UTF-8", b)
	}
	return string(b), nil
}

// eachField walks the top-level fields of a message. Only varint and
// length-delimited fields are part of the layout; any other wire type is
// rejected.
func eachField(b []byte, fn func(num protowire.Number, f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{typ: typ}
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.num = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.raw = v
			b = b[n:]
		default:
			return fmt.Errorf("field %d: unsupported wire type %d", num, typ)
		}

		if err := fn(num, f); err != nil {
			return err
		}
	}
	return nil
}

func unknownField(num protowire.Number) error {
	return fmt.Errorf("unknown field %d", num)
}
