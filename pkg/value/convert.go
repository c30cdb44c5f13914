package value

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/cockroachdb/errors"
)

// FromAny converts plain Go values, as produced by encoding/json or YAML
// decoding into any, into a Value. Keys of Go maps are sorted because Go maps
// carry no order.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t.Clone(), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return parseNumber(t.String())
	case string:
		return String(t), nil
	case []any:
		items := make([]Value, 0, len(t))

		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, errors.Wrapf(err, "converting index %d", i)
			}

			items = append(items, v)
		}

		return List(items...), nil
	case map[string]any:
		m := NewMap()

		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}

		slices.Sort(keys)

		for _, key := range keys {
			v, err := FromAny(t[key])
			if err != nil {
				return Value{}, errors.Wrapf(err, "converting %q", key)
			}

			m.Set(key, v)
		}

		return FromMap(m), nil
	default:
		return Value{}, errors.Wrapf(ErrUnsupportedKind, "cannot convert %T", x)
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}

	return Int(int64(u))
}

// Interface converts v into plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any. Opaque and Undefined yield nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}

		return out
	case KindMap:
		out := make(map[string]any, v.m.Len())

		v.m.Range(func(key string, item Value) bool {
			out[key] = item.Interface()

			return true
		})

		return out
	default:
		return nil
	}
}
