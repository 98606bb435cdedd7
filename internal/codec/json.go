package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/tags"
)

type jsonCodec struct {
	format repo.Format
	indent bool
}

// jsonState is the persisted document. Keys are stable; do not rename.
type jsonState struct {
	Format      string               `json:"format"`
	Tags        map[string]jsonValue `json:"tags"`
	Comment     string               `json:"comment,omitempty"`
	Created     time.Time            `json:"created"`
	Updated     *time.Time           `json:"updated,omitempty"`
	Files       map[string]jsonEntry `json:"files"`
	Collections map[string][]string  `json:"collections"`
}

type jsonEntry struct {
	Tags    map[string]jsonValue `json:"tags"`
	Comment string               `json:"comment,omitempty"`
	Created time.Time            `json:"created"`
	Updated *time.Time           `json:"updated,omitempty"`
}

// jsonValue is an externally tagged value, e.g. {"int": 10} or
// {"url": "https://..."}. A bare tag is encoded as null.
type jsonValue struct {
	v *tags.Value
}

func (j jsonValue) MarshalJSON() ([]byte, error) {
	if j.v == nil {
		return []byte("null"), nil
	}
	var payload any
	switch j.v.Kind() {
	case tags.KindInt:
		payload, _ = j.v.AsInt()
	case tags.KindBool:
		payload, _ = j.v.AsBool()
	default:
		payload = j.v.Text()
	}
	return json.Marshal(map[string]any{j.v.Kind().String(): payload})
}

func (j *jsonValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		j.v = nil
		return nil
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("tag value must have exactly one variant, got %d", len(tagged))
	}
	for name, raw := range tagged {
		kind, ok := tags.ParseKind(name)
		if !ok {
			return fmt.Errorf("unknown tag value variant %q", name)
		}
		var v tags.Value
		switch kind {
		case tags.KindInt:
			var n int64
			if err := json.Unmarshal(raw, &n); err != nil {
				return fmt.Errorf("int tag value: %w", err)
			}
			v = tags.Int(n)
		case tags.KindBool:
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return fmt.Errorf("bool tag value: %w", err)
			}
			v = tags.Bool(b)
		default:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("%s tag value: %w", kind, err)
			}
			var err error
			if v, err = tags.Construct(kind, s); err != nil {
				return err
			}
		}
		j.v = &v
	}
	return nil
}

func (c jsonCodec) Encode(r *repo.Repository) ([]byte, error) {
	if err := checkText(r); err != nil {
		return nil, err
	}
	doc := jsonState{
		Format:      string(r.Format),
		Tags:        toJSONTags(r.Self.Tags),
		Comment:     r.Self.Comment,
		Created:     r.Self.Created,
		Updated:     r.Self.Updated,
		Files:       make(map[string]jsonEntry, len(r.Entries)),
		Collections: make(map[string][]string, len(r.Collections)),
	}
	for key, e := range r.Entries {
		doc.Files[key] = jsonEntry{
			Tags:    toJSONTags(e.Tags),
			Comment: e.Comment,
			Created: e.Created,
			Updated: e.Updated,
		}
	}
	for name, coll := range r.Collections {
		members := coll.Members
		if members == nil {
			members = []string{}
		}
		doc.Collections[name] = members
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if c.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode %s state: %w", c.format, err)
	}
	return buf.Bytes(), nil
}

func (c jsonCodec) Decode(data []byte) (*repo.Repository, error) {
	var doc jsonState
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, &DecodeError{Format: c.format, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Format: c.format, Err: errors.New("trailing data after document")}
	}

	format, err := repo.ParseFormat(doc.Format)
	if err != nil {
		return nil, &DecodeError{Format: c.format, Err: err}
	}

	r := &repo.Repository{
		Format: format,
		Self: &repo.Entry{
			Tags:    fromJSONTags(doc.Tags),
			Comment: doc.Comment,
			Created: doc.Created.UTC(),
			Updated: utcPtr(doc.Updated),
		},
		Entries:     make(map[string]*repo.Entry, len(doc.Files)),
		Collections: make(map[string]*repo.Collection, len(doc.Collections)),
	}
	for key, e := range doc.Files {
		r.Entries[key] = &repo.Entry{
			Tags:    fromJSONTags(e.Tags),
			Comment: e.Comment,
			Created: e.Created.UTC(),
			Updated: utcPtr(e.Updated),
		}
	}
	for name, members := range doc.Collections {
		coll := &repo.Collection{Members: make([]string, 0, len(members))}
		for _, m := range members {
			if coll.Contains(m) {
				return nil, &DecodeError{Format: c.format, Err: fmt.Errorf("collection %q: duplicate member %q", name, m)}
			}
			coll.Members = append(coll.Members, m)
		}
		r.Collections[name] = coll
	}
	r.Normalize()
	return r, nil
}

func toJSONTags(t repo.Tags) map[string]jsonValue {
	out := make(map[string]jsonValue, len(t))
	for k, v := range t {
		out[k] = jsonValue{v: v}
	}
	return out
}

func fromJSONTags(in map[string]jsonValue) repo.Tags {
	out := make(repo.Tags, len(in))
	for k, v := range in {
		out[k] = v.v
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
