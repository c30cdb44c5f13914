package merge

import (
	"math"
	"strconv"

	"github.com/google/go-cmp/cmp"

	"github.com/smykla-skalski/objmerge/pkg/value"
)

// mergeList combines two lists by concatenation or, with MergeArrayValues,
// position by position. UniqueArrays dedupes either result.
func (r *run) mergeList(left, right []value.Value) (value.Value, error) {
	if err := r.down(); err != nil {
		return value.Value{}, err
	}
	defer r.up()

	var (
		out []value.Value
		err error
	)

	if r.opts.Has(MergeArrayValues) {
		out, err = r.mergePositions(left, right)
	} else {
		out, err = r.concat(left, right)
	}

	if err != nil {
		return value.Value{}, err
	}

	if r.opts.Has(UniqueArrays) {
		out = deduplicate(out)
	}

	return value.List(out...), nil
}

// concat appends right to left. Nested containers are merged against an
// empty value of their own kind so they pass through the same rules as
// any other field.
func (r *run) concat(left, right []value.Value) ([]value.Value, error) {
	out := make([]value.Value, 0, len(left)+len(right))

	for i, item := range append(append([]value.Value(nil), left...), right...) {
		if !item.Kind().IsContainer() {
			out = append(out, item.Clone())

			continue
		}

		empty, err := value.EmptyOf(item.Kind())
		if err != nil {
			return nil, r.pathError(err)
		}

		merged, err := r.mergeField(IndexSegment(i), empty, item)
		if err != nil {
			return nil, err
		}

		if !merged.IsUndefined() {
			out = append(out, merged)
		}
	}

	return out, nil
}

func (r *run) mergePositions(left, right []value.Value) ([]value.Value, error) {
	n := max(len(left), len(right))
	out := make([]value.Value, 0, n)

	for i := range n {
		var l, rv value.Value

		if i < len(left) {
			l = left[i]
		}

		if i < len(right) {
			rv = right[i]
		}

		merged, err := r.mergeField(IndexSegment(i), l, rv)
		if err != nil {
			return nil, err
		}

		if !merged.IsUndefined() {
			out = append(out, merged)
		}
	}

	return out, nil
}

// deduplicate removes duplicate elements, keeping the first occurrence.
// Scalars are compared through a set keyed by kind and representation,
// containers fall back to cmp.Equal.
func deduplicate(items []value.Value) []value.Value {
	if len(items) < 2 {
		return items
	}

	seen := make([]value.Value, 0, len(items))
	scalars := make(map[scalarKey]struct{}, len(items))

	for _, item := range items {
		if key, ok := scalarKeyOf(item); ok {
			if _, dup := scalars[key]; !dup {
				scalars[key] = struct{}{}
				seen = append(seen, item)
			}

			continue
		}

		found := false

		for _, prev := range seen {
			if cmp.Equal(item, prev) {
				found = true

				break
			}
		}

		if !found {
			seen = append(seen, item)
		}
	}

	return seen
}

type scalarKey struct {
	kind value.Kind
	repr string
}

func scalarKeyOf(v value.Value) (scalarKey, bool) {
	switch v.Kind() {
	case value.KindNull:
		return scalarKey{kind: value.KindNull}, true
	case value.KindBool:
		b, _ := v.Bool()

		return scalarKey{kind: value.KindBool, repr: strconv.FormatBool(b)}, true
	case value.KindInt:
		i, _ := v.Int()

		return scalarKey{kind: value.KindInt, repr: strconv.FormatInt(i, 10)}, true
	case value.KindFloat:
		f, _ := v.Float()
		if math.IsNaN(f) {
			return scalarKey{}, false
		}

		if f == 0 {
			f = 0
		}

		return scalarKey{kind: value.KindFloat, repr: strconv.FormatFloat(f, 'g', -1, 64)}, true
	case value.KindString:
		s, _ := v.Str()

		return scalarKey{kind: value.KindString, repr: s}, true
	default:
		return scalarKey{}, false
	}
}
