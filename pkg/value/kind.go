package value

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	// KindUndefined marks a field that does not exist on one side of a merge.
	// It is never a valid JSON value and is the zero Kind.
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	// KindOpaque is an inert placeholder, compatible with KindNull when kinds are compared.
	KindOpaque
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindString:    "string",
	KindList:      "list",
	KindMap:       "map",
	KindOpaque:    "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsScalar reports whether values of this kind never recurse during a merge.
func (k Kind) IsScalar() bool {
	switch k {
	case KindNull, KindBool, KindInt, KindFloat, KindString, KindOpaque:
		return true
	default:
		return false
	}
}

// IsContainer reports whether k is KindList or KindMap.
func (k Kind) IsContainer() bool {
	return k == KindList || k == KindMap
}

// KindsCompatible reports whether two kinds may be merged without a type conflict.
// Kinds are compatible when identical, or when one is KindNull and the other KindOpaque.
func KindsCompatible(left, right Kind) bool {
	if left == right {
		return true
	}

	return (left == KindNull && right == KindOpaque) || (left == KindOpaque && right == KindNull)
}

// EmptyOf returns the zero value for a kind: "", 0, 0.0, false, an empty list,
// an empty map, or null for KindNull and KindOpaque.
func EmptyOf(k Kind) (Value, error) {
	switch k {
	case KindNull, KindOpaque:
		return Null(), nil
	case KindBool:
		return Bool(false), nil
	case KindInt:
		return Int(0), nil
	case KindFloat:
		return Float(0), nil
	case KindString:
		return String(""), nil
	case KindList:
		return List(), nil
	case KindMap:
		return FromMap(NewMap()), nil
	default:
		return Value{}, errors.Wrapf(ErrUnsupportedKind, "no empty value for kind %s", k)
	}
}
