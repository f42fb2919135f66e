// Package bencode implements the bencode serialization format used by
// metainfo files, tracker replies and KRPC/DHT messages.
//
// A Value is a recursive tagged union with four variants: byte-string,
// integer, list and dictionary. Dictionary keys are byte-strings, not
// UTF-8 strings, since compact peer lists and node-ids passed through
// dictionaries are not valid UTF-8.
package bencode

import "fmt"

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindList
	KindDict
)

// Value is a decoded bencode value. Exactly one of the fields matching
// Kind is meaningful; the others are the zero value.
type Value struct {
	Kind Kind

	Str  []byte
	Int  int64
	List []Value
	Dict []DictEntry
}

// DictEntry is one key/value pair of a dictionary, kept in encounter
// order on decode (callers that need canonical order rely on Encode,
// which always sorts).
type DictEntry struct {
	Key []byte
	Val Value
}

// String returns a byte-string value.
func String(b []byte) Value { return Value{Kind: KindString, Str: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// List returns a list value.
func List(vs []Value) Value { return Value{Kind: KindList, List: vs} }

// Dict returns a dictionary value from entries in any order; Encode
// sorts them lexicographically by key, which is the only thing the
// wire format requires.
func Dict(entries []DictEntry) Value { return Value{Kind: KindDict, Dict: entries} }

// Get returns the value for key in a dictionary, and whether it was
// present. Get on a non-dict Value returns (zero, false).
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindDict {
		return Value{}, false
	}
	for _, e := range v.Dict {
		if string(e.Key) == key {
			return e.Val, true
		}
	}
	return Value{}, false
}

// GetString is a convenience accessor for a dict entry that must be a
// byte-string; ok is false if the key is absent or not a string.
func (v Value) GetString(key string) ([]byte, bool) {
	e, ok := v.Get(key)
	if !ok || e.Kind != KindString {
		return nil, false
	}
	return e.Str, true
}

// GetInt is the integer analogue of GetString.
func (v Value) GetInt(key string) (int64, bool) {
	e, ok := v.Get(key)
	if !ok || e.Kind != KindInt {
		return 0, false
	}
	return e.Int, true
}

func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindList:
		return fmt.Sprintf("%v", v.List)
	case KindDict:
		return fmt.Sprintf("%v", v.Dict)
	default:
		return "<invalid bencode value>"
	}
}
