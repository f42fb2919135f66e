package bencode

import (
	"fmt"
	"reflect"
	"strings"
)

// Marshaler is implemented by types that encode themselves directly,
// such as RawMessage.
type Marshaler interface {
	MarshalBencode() ([]byte, error)
}

// Unmarshaler is implemented by types that decode themselves directly.
type Unmarshaler interface {
	UnmarshalBencode([]byte) error
}

// Marshal encodes v, which must be a struct, map, slice, or one of the
// primitive kinds Decode produces, using `bencode:"name,omitempty"`
// struct tags the way encoding/json uses `json` tags. This mirrors the
// struct-tag API shape of github.com/zeebo/bencode so callers familiar
// with that package (as the metainfo model is) feel at home.
func Marshal(v interface{}) ([]byte, error) {
	val, err := marshalValue(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return Encode(val), nil
}

// Unmarshal decodes data into v, which must be a pointer.
func Unmarshal(data []byte, v interface{}) error {
	val, n, err := Decode(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return newDecodeError(n, "trailing data after top-level value")
	}
	return unmarshalValue(val, reflect.ValueOf(v))
}

func marshalValue(rv reflect.Value) (Value, error) {
	if m, ok := asMarshaler(rv); ok {
		b, err := m.MarshalBencode()
		if err != nil {
			return Value{}, err
		}
		v, _, err := Decode(b)
		return v, err
	}
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return String(nil), nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return String([]byte(rv.String())), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return String(b), nil
		}
		items := make([]Value, rv.Len())
		for i := range items {
			item, err := marshalValue(rv.Index(i))
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return List(items), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint())), nil
	case reflect.Struct:
		return marshalStruct(rv)
	case reflect.Map:
		return marshalMap(rv)
	default:
		return Value{}, fmt.Errorf("bencode: cannot marshal kind %s", rv.Kind())
	}
}

func marshalStruct(rv reflect.Value) (Value, error) {
	t := rv.Type()
	var entries []DictEntry
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		name, omitempty, skip := parseTag(field)
		if skip {
			continue
		}
		fv := rv.Field(i)
		if omitempty && isEmptyValue(fv) {
			continue
		}
		val, err := marshalValue(fv)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, DictEntry{Key: []byte(name), Val: val})
	}
	return Dict(entries), nil
}

func marshalMap(rv reflect.Value) (Value, error) {
	var entries []DictEntry
	for _, key := range rv.MapKeys() {
		val, err := marshalValue(rv.MapIndex(key))
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, DictEntry{Key: []byte(fmt.Sprint(key.Interface())), Val: val})
	}
	return Dict(entries), nil
}

func unmarshalValue(v Value, rv reflect.Value) error {
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("bencode: Unmarshal target must be a non-nil pointer")
	}
	if u, ok := asUnmarshaler(rv); ok {
		return u.UnmarshalBencode(Encode(v))
	}
	elem := rv.Elem()
	switch elem.Kind() {
	case reflect.String:
		if v.Kind != KindString {
			return fmt.Errorf("bencode: expected string, got kind %d", v.Kind)
		}
		elem.SetString(string(v.Str))
	case reflect.Slice:
		if elem.Type().Elem().Kind() == reflect.Uint8 {
			if v.Kind != KindString {
				return fmt.Errorf("bencode: expected byte-string, got kind %d", v.Kind)
			}
			elem.SetBytes(append([]byte(nil), v.Str...))
			return nil
		}
		if v.Kind != KindList {
			return fmt.Errorf("bencode: expected list, got kind %d", v.Kind)
		}
		s := reflect.MakeSlice(elem.Type(), len(v.List), len(v.List))
		for i := range v.List {
			if err := unmarshalValue(v.List[i], s.Index(i).Addr()); err != nil {
				return err
			}
		}
		elem.Set(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Kind != KindInt {
			return fmt.Errorf("bencode: expected integer, got kind %d", v.Kind)
		}
		elem.SetInt(v.Int)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Kind != KindInt {
			return fmt.Errorf("bencode: expected integer, got kind %d", v.Kind)
		}
		elem.SetUint(uint64(v.Int))
	case reflect.Struct:
		return unmarshalStruct(v, elem)
	case reflect.Ptr:
		if elem.IsNil() {
			elem.Set(reflect.New(elem.Type().Elem()))
		}
		return unmarshalValue(v, elem)
	default:
		return fmt.Errorf("bencode: cannot unmarshal into kind %s", elem.Kind())
	}
	return nil
}

func unmarshalStruct(v Value, rv reflect.Value) error {
	if v.Kind != KindDict {
		return fmt.Errorf("bencode: expected dictionary for struct, got kind %d", v.Kind)
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name, _, skip := parseTag(field)
		if skip {
			continue
		}
		entry, ok := v.Get(name)
		if !ok {
			continue
		}
		if err := unmarshalValue(entry, rv.Field(i).Addr()); err != nil {
			return fmt.Errorf("bencode: field %s: %w", field.Name, err)
		}
	}
	return nil
}

func parseTag(field reflect.StructField) (name string, omitempty bool, skip bool) {
	tag := field.Tag.Get("bencode")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = field.Name
	if parts[0] != "" {
		name = parts[0]
	}
	for _, p := range parts[1:] {
		if p == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func asMarshaler(rv reflect.Value) (Marshaler, bool) {
	if !rv.IsValid() {
		return nil, false
	}
	if rv.CanInterface() {
		if m, ok := rv.Interface().(Marshaler); ok {
			return m, true
		}
	}
	if rv.CanAddr() && rv.Addr().CanInterface() {
		if m, ok := rv.Addr().Interface().(Marshaler); ok {
			return m, true
		}
	}
	return nil, false
}

func asUnmarshaler(rv reflect.Value) (Unmarshaler, bool) {
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		if u, ok := rv.Interface().(Unmarshaler); ok {
			return u, true
		}
		return asUnmarshaler(rv.Elem())
	}
	if rv.CanAddr() && rv.Addr().CanInterface() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			return u, true
		}
	}
	return nil, false
}
