// Package value models JSON-shaped trees as a closed tagged union.
//
// A Value is exactly one of null, bool, int, float, string, list, map or an
// opaque placeholder. The zero Value is undefined: it stands for a field that
// does not exist and is never equal to null.
package value

import (
	"math"
	"reflect"
)

// Value is an immutable JSON-shaped value. Containers returned by accessors
// must not be modified; use Clone to obtain a private copy.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	list   []Value
	m      *Map
	opaque any
}

// Undefined returns the undefined sentinel, the zero Value.
func Undefined() Value { return Value{} }

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list value. The list takes ownership of items.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{kind: KindList, list: items}
}

// FromMap returns a map value backed by m. A nil m yields an empty map.
func FromMap(m *Map) Value {
	if m == nil {
		m = NewMap()
	}

	return Value{kind: KindMap, m: m}
}

// Opaque wraps an inert payload that takes no part in merging.
func Opaque(payload any) Value { return Value{kind: KindOpaque, opaque: payload} }

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is the undefined sentinel.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsUndefined reports whether v counts as absent. Null counts as absent only
// when nullAsUndefined is set.
func IsUndefined(v Value, nullAsUndefined bool) bool {
	if v.kind == KindUndefined {
		return true
	}

	return nullAsUndefined && v.kind == KindNull
}

func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Str returns the string payload. It is not named String because Value
// implements fmt.Stringer.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Items returns the elements of a list, or nil for any other kind.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}

	return v.list
}

// Len returns the number of elements of a list or entries of a map.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return v.m.Len()
	default:
		return 0
	}
}

// Index returns the i-th list element, or Undefined when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Value{}
	}

	return v.list[i]
}

// Map returns the entries of a map value.
func (v Value) Map() (*Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}

	return v.m, true
}

// Get returns the value stored under key in a map, or Undefined.
func (v Value) Get(key string) Value {
	if v.kind != KindMap {
		return Value{}
	}

	got, _ := v.m.Get(key)

	return got
}

// Payload returns the payload of an opaque value.
func (v Value) Payload() any { return v.opaque }

// Clone returns a deep copy of v. Scalars are returned as is.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}

		return Value{kind: KindList, list: items}
	case KindMap:
		return Value{kind: KindMap, m: v.m.Clone()}
	default:
		return v
	}
}

// Sorted returns a deep copy of v with the keys of every nested map in
// lexical order.
func (v Value) Sorted() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Sorted()
		}

		return Value{kind: KindList, list: items}
	case KindMap:
		out := NewMap()

		for _, key := range v.m.SortedKeys() {
			item, _ := v.m.Get(key)
			out.entries.Set(key, item.Sorted())
		}

		return Value{kind: KindMap, m: out}
	default:
		return v
	}
}

// Equal reports deep equality. Kinds must match exactly and map entry order
// is ignored. Equal makes Value usable with go-cmp.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}

		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}

		return true
	case KindMap:
		return v.m.Equal(other.m)
	case KindOpaque:
		return reflect.DeepEqual(v.opaque, other.opaque)
	default:
		return false
	}
}

// String renders v as compact JSON. Undefined renders as <undefined>.
func (v Value) String() string {
	if v.kind == KindUndefined {
		return "<undefined>"
	}

	out, err := v.MarshalJSON()
	if err != nil {
		return "<" + v.kind.String() + ">"
	}

	return string(out)
}

// integral reports whether f has no fractional part and is finite.
func integral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}
