package tags

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// parseStep tries one variant against the whole input.
type parseStep struct {
	kind  Kind
	parse func(raw string) (Value, bool)
}

// precedence is the fixed order in which raw values are typed. String is not
// listed; it is the fallback when every step declines.
var precedence = []parseStep{
	{KindInt, func(raw string) (Value, bool) {
		n, ok := parseInt(raw)
		return Int(n), ok
	}},
	{KindBool, func(raw string) (Value, bool) {
		b, ok := parseBool(raw)
		return Bool(b), ok
	}},
	{KindURL, func(raw string) (Value, bool) {
		u, ok := parseURL(raw)
		if !ok {
			return Value{}, false
		}
		return URL(u), true
	}},
}

// Parse types a raw string. It never fails: anything that is not an Int64,
// Bool or Url is kept verbatim as a String.
func Parse(raw string) Value {
	for _, step := range precedence {
		if v, ok := step.parse(raw); ok {
			return v
		}
	}
	return String(raw)
}

// parseInt accepts base-10 digits with an optional leading '-'. strconv also
// takes a leading '+', which is rejected here.
func parseInt(raw string) (int64, bool) {
	if raw == "" || raw[0] == '+' {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseBool is case-sensitive and only knows the two literals.
func parseBool(raw string) (bool, bool) {
	switch raw {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseURL(raw string) (*url.URL, bool) {
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	if u.Host == "" && u.Opaque == "" && u.Path == "" {
		return nil, false
	}
	return u, true
}

// ErrInvalidKey is returned for empty keys or keys with reserved characters.
var ErrInvalidKey = errors.New("invalid tag key")

const reservedKeyChars = `\:,!`

// ErrInvalidText is returned for values and comments that are not UTF-8.
var ErrInvalidText = errors.New("text is not valid UTF-8")

// ValidateText checks that s can be stored in every format.
func ValidateText(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidText, s)
	}
	return nil
}

// ValidateKey checks that key is usable as a tag key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidKey, key)
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) || strings.ContainsRune(reservedKeyChars, r) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidKey, key, r)
		}
	}
	return nil
}

// Assignment is one parsed `key[:value]` argument. A nil Value is a bare tag.
type Assignment struct {
	Key   string
	Value *Value
}

// ParseAssignment splits a `key[:value]` argument and types the value with
// Parse. An empty value after the colon yields a bare tag.
func ParseAssignment(arg string) (Assignment, error) {
	key, raw, hasValue := strings.Cut(arg, ":")
	if err := ValidateKey(key); err != nil {
		return Assignment{}, err
	}
	if !hasValue || raw == "" {
		return Assignment{Key: key}, nil
	}
	if err := ValidateText(raw); err != nil {
		return Assignment{}, fmt.Errorf("tag %q: %w", key, err)
	}
	v := Parse(raw)
	return Assignment{Key: key, Value: &v}, nil
}

// ParseStrictAssignment is ParseAssignment for flags that demand a specific
// kind. The value is required and must parse as kind.
func ParseStrictAssignment(arg string, kind Kind) (Assignment, error) {
	key, raw, hasValue := strings.Cut(arg, ":")
	if err := ValidateKey(key); err != nil {
		return Assignment{}, err
	}
	if !hasValue || raw == "" {
		return Assignment{}, fmt.Errorf("missing %s value for tag %q", kind, key)
	}
	if err := ValidateText(raw); err != nil {
		return Assignment{}, fmt.Errorf("tag %q: %w", key, err)
	}
	v, err := Construct(kind, raw)
	if err != nil {
		return Assignment{}, fmt.Errorf("tag %q: %w", key, err)
	}
	return Assignment{Key: key, Value: &v}, nil
}
