// Package jsonx holds lenient JSON scalar types for reading historically
// inconsistent records. Every type accepts any JSON value and degrades to its
// zero value instead of failing the surrounding decode.
package jsonx

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// String reads a JSON string. Numbers and booleans are kept in their textual
// form; objects, arrays and null read as "".
type String string

// UnmarshalJSON implements json.Unmarshaler.
func (s *String) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = String(v)
	case 't', 'f':
		*s = String(data)
	case '{', '[', 'n':
		*s = ""
	default:
		*s = String(data)
	}
	return nil
}

// Number reads a JSON number or a numeric string such as "20" or "20%".
// Anything else reads as 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		if v, ok := ParseNumber(raw); ok {
			*n = Number(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*n = Number(v)
	}
	return nil
}

// ParseNumber parses a human-entered number, tolerating surrounding space,
// a trailing percent sign and thousands separators. NaN and infinities are
// rejected.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Bool reads a JSON boolean or the strings "true"/"false". Anything else
// reads as false.
type Bool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	*b = false
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err == nil {
			*b = Bool(v)
		}
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = Bool(v)
	}
	return nil
}

// List reads a JSON array into its raw elements. Any non-array reads as nil.
type List []json.RawMessage

// UnmarshalJSON implements json.Unmarshaler.
func (l *List) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}
	*l = items
	return nil
}

// Kind classifies the top-level JSON value in data.
type Kind int

// JSON value kinds.
const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
	KindInvalid
)

// KindOf inspects the first byte of data without decoding it. Invalid JSON
// that happens to start with a valid byte is caught by the decode that
// follows, not here.
func KindOf(data []byte) Kind {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return KindAbsent
	}
	switch data[0] {
	case 'n':
		return KindNull
	case '"':
		return KindString
	case 't', 'f':
		return KindBool
	case '{':
		return KindObject
	case '[':
		return KindArray
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return KindNumber
	default:
		return KindInvalid
	}
}

// HasKey reports whether the JSON object in data has the given top-level key.
// It returns false for non-objects.
func HasKey(data []byte, key string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}
	_, ok := fields[key]
	return ok
}
