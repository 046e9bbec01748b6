package vault

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// valueKind tags the variant held by a Value.
type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

// Value is an owned JSON value tree. Chunk payloads are modeled this way,
// rather than as map[string]interface{}, so that staging a payload into the
// buffer is an explicit deep copy with no aliasing of the caller's slices or
// maps (see spec.md §9, "Deep copy of staged payloads").
type Value struct {
	kind valueKind
	b    bool
	n    json.Number
	s    string
	arr  []Value
	obj  map[string]Value
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: kindNull} }

// FromAny converts a plain Go value (as produced by encoding/json, or built
// by hand with map[string]interface{}/[]interface{}/string/bool/nil/numbers)
// into an owned Value tree. It always walks the input and allocates fresh
// maps/slices, so the result never aliases x.
func FromAny(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{kind: kindNull}, nil
	case Value:
		return t.Clone(), nil
	case bool:
		return Value{kind: kindBool, b: t}, nil
	case json.Number:
		return Value{kind: kindNumber, n: t}, nil
	case float64:
		return Value{kind: kindNumber, n: json.Number(formatFloat(t))}, nil
	case int:
		return Value{kind: kindNumber, n: json.Number(fmt.Sprintf("%d", t))}, nil
	case int64:
		return Value{kind: kindNumber, n: json.Number(fmt.Sprintf("%d", t))}, nil
	case string:
		return Value{kind: kindString, s: t}, nil
	case []interface{}:
		arr := make([]Value, len(t))
		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v
		}
		return Value{kind: kindArray, arr: arr}, nil
	case map[string]interface{}:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			obj[k] = v
		}
		return Value{kind: kindObject, obj: obj}, nil
	default:
		return Value{}, fmt.Errorf("vault: value of type %T is not JSON-serializable", x)
	}
}

// FromMap is a convenience wrapper for the common case: a chunk payload is
// always a top-level JSON object (spec.md §6 "Top-level value is always an
// object").
func FromMap(m map[string]interface{}) (Value, error) {
	if m == nil {
		return Value{kind: kindObject, obj: map[string]Value{}}, nil
	}
	return FromAny(m)
}

// Clone deep-copies the value tree.
func (v Value) Clone() Value {
	switch v.kind {
	case kindArray:
		arr := make([]Value, len(v.arr))
		for i, e := range v.arr {
			arr[i] = e.Clone()
		}
		return Value{kind: kindArray, arr: arr}
	case kindObject:
		obj := make(map[string]Value, len(v.obj))
		for k, e := range v.obj {
			obj[k] = e.Clone()
		}
		return Value{kind: kindObject, obj: obj}
	default:
		return v
	}
}

// ToAny converts the value tree back to plain Go values.
func (v Value) ToAny() interface{} {
	switch v.kind {
	case kindNull:
		return nil
	case kindBool:
		return v.b
	case kindNumber:
		return v.n
	case kindString:
		return v.s
	case kindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.ToAny()
		}
		return out
	case kindObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.ToAny()
		}
		return out
	default:
		return nil
	}
}

// ToMap converts an object-kind Value back to a map[string]interface{}.
// Non-object values convert to an empty map, since chunk payloads are
// always objects at the top level.
func (v Value) ToMap() map[string]interface{} {
	if v.kind != kindObject {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(v.obj))
	for k, e := range v.obj {
		out[k] = e.ToAny()
	}
	return out
}

// Equal reports whether v and other are structurally identical.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case kindNull:
		return true
	case kindBool:
		return v.b == other.b
	case kindNumber:
		return v.n.String() == other.n.String()
	case kindString:
		return v.s == other.s
	case kindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case kindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, e := range v.obj {
			oe, ok := other.obj[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNull:
		return []byte("null"), nil
	case kindBool:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case kindNumber:
		if v.n == "" {
			return []byte("0"), nil
		}
		return []byte(v.n), nil
	case kindString:
		return json.Marshal(v.s)
	case kindArray:
		return json.Marshal(v.arr)
	case kindObject:
		return json.Marshal(v.obj)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler, decoding numbers as
// json.Number so round-tripping never loses precision.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	conv, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = conv
	return nil
}

func formatFloat(f float64) string {
	// %g round-trips float64 without spurious trailing digits for the
	// values JSON numbers normally carry.
	return fmt.Sprintf("%g", f)
}
