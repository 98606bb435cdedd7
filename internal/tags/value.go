// Package tags defines typed tag values and the parsing rules that turn raw
// command-line strings into them.
package tags

import (
	"fmt"
	"net/url"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindString is the zero Kind so that a zero Value is the empty string.
	KindString Kind = iota
	KindInt
	KindBool
	KindURL
)

// String returns the lowercase name used in persisted state and output.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindURL:
		return "url"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "int":
		return KindInt, true
	case "bool":
		return KindBool, true
	case "url":
		return KindURL, true
	case "string":
		return KindString, true
	}
	return 0, false
}

// Value is a closed union over Int64, Bool, Url and String.
//
// Value is comparable; two values are equal when they have the same kind and
// payload. Only the field matching the kind is meaningful.
type Value struct {
	kind Kind
	i    int64
	b    bool
	s    string // string payload, or the canonical URL text
}

// Int returns an Int64 value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Bool returns a Bool value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// String returns a String value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// URL returns a Url value from an already-parsed URL.
func URL(u *url.URL) Value { return Value{kind: KindURL, s: u.String()} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the Int64 payload.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsBool returns the Bool payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the String payload.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsURL returns the parsed Url payload.
func (v Value) AsURL() (*url.URL, bool) {
	if v.kind != KindURL {
		return nil, false
	}
	u, err := url.Parse(v.s)
	if err != nil {
		return nil, false
	}
	return u, true
}

// Text renders the payload without any type decoration.
func (v Value) Text() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

func (v Value) String() string {
	return v.Text()
}

// Construct rebuilds a value from its kind and textual payload. Persisted
// formats use it so that a stored kind is never re-inferred.
func Construct(kind Kind, text string) (Value, error) {
	switch kind {
	case KindInt:
		n, ok := parseInt(text)
		if !ok {
			return Value{}, fmt.Errorf("invalid int value %q", text)
		}
		return Int(n), nil
	case KindBool:
		b, ok := parseBool(text)
		if !ok {
			return Value{}, fmt.Errorf("invalid bool value %q", text)
		}
		return Bool(b), nil
	case KindURL:
		u, ok := parseURL(text)
		if !ok {
			return Value{}, fmt.Errorf("invalid url value %q", text)
		}
		return URL(u), nil
	case KindString:
		return String(text), nil
	}
	return Value{}, fmt.Errorf("unknown value kind %d", uint8(kind))
}
