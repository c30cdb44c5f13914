package value

import (
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is a string-keyed map that remembers insertion order. Order is kept for
// iteration and encoding only; Equal ignores it.
type Map struct {
	entries *orderedmap.OrderedMap[string, Value]
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: orderedmap.New[string, Value]()}
}

// Len returns the number of entries. A nil map is empty.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}

	return m.entries.Len()
}

// Get returns the value stored under key. Missing keys yield Undefined.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}

	return m.entries.Get(key)
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)

	return ok
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position. Storing Undefined removes the key.
func (m *Map) Set(key string, v Value) *Map {
	if v.IsUndefined() {
		m.entries.Delete(key)

		return m
	}

	m.entries.Set(key, v)

	return m
}

// Delete removes key.
func (m *Map) Delete(key string) {
	m.entries.Delete(key)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}

	keys := make([]string, 0, m.entries.Len())
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	return keys
}

// SortedKeys returns the keys in lexical order.
func (m *Map) SortedKeys() []string {
	keys := m.Keys()
	slices.Sort(keys)

	return keys
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}

	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	out := NewMap()

	m.Range(func(key string, v Value) bool {
		out.entries.Set(key, v.Clone())

		return true
	})

	return out
}

// Equal reports whether both maps hold equal values under the same keys.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}

	equal := true

	m.Range(func(key string, v Value) bool {
		ov, ok := other.Get(key)
		equal = ok && v.Equal(ov)

		return equal
	})

	return equal
}

// UnionKeys returns left's keys in left's order followed by the keys only
// present in right, in right's order.
func UnionKeys(left, right *Map) []string {
	keys := left.Keys()

	right.Range(func(key string, _ Value) bool {
		if !left.Has(key) {
			keys = append(keys, key)
		}

		return true
	})

	return keys
}
