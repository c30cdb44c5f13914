package value_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/smykla-skalski/objmerge/pkg/value"
)

func mustJSON(t *testing.T, doc string) value.Value {
	t.Helper()

	v, err := value.DecodeJSON([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeJSON(%q) error = %v", doc, err)
	}

	return v
}

func TestIsUndefined(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		v               value.Value
		nullAsUndefined bool
		want            bool
	}{
		{name: "sentinel", v: value.Undefined(), want: true},
		{name: "zero value is the sentinel", v: value.Value{}, want: true},
		{name: "null is defined by default", v: value.Null(), want: false},
		{name: "null as undefined", v: value.Null(), nullAsUndefined: true, want: true},
		{name: "empty string stays defined", v: value.String(""), nullAsUndefined: true, want: false},
		{name: "opaque is not null", v: value.Opaque(1), nullAsUndefined: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := value.IsUndefined(tt.v, tt.nullAsUndefined); got != tt.want {
				t.Errorf("IsUndefined(%v, %v) = %v, want %v", tt.v, tt.nullAsUndefined, got, tt.want)
			}
		})
	}
}

func TestUndefinedNeverEqualsNull(t *testing.T) {
	t.Parallel()

	if value.Undefined().Equal(value.Null()) {
		t.Error("Undefined().Equal(Null()) = true, want false")
	}

	if value.Null().Equal(value.Undefined()) {
		t.Error("Null().Equal(Undefined()) = true, want false")
	}
}

func TestKindsCompatible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		left, right value.Kind
		want        bool
	}{
		{value.KindInt, value.KindInt, true},
		{value.KindNull, value.KindOpaque, true},
		{value.KindOpaque, value.KindNull, true},
		{value.KindInt, value.KindFloat, false},
		{value.KindBool, value.KindInt, false},
		{value.KindList, value.KindMap, false},
		{value.KindNull, value.KindString, false},
	}

	for _, tt := range tests {
		t.Run(tt.left.String()+"/"+tt.right.String(), func(t *testing.T) {
			t.Parallel()

			if got := value.KindsCompatible(tt.left, tt.right); got != tt.want {
				t.Errorf("KindsCompatible(%s, %s) = %v, want %v", tt.left, tt.right, got, tt.want)
			}
		})
	}
}

func TestEmptyOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind value.Kind
		want value.Value
	}{
		{value.KindNull, value.Null()},
		{value.KindOpaque, value.Null()},
		{value.KindBool, value.Bool(false)},
		{value.KindInt, value.Int(0)},
		{value.KindFloat, value.Float(0)},
		{value.KindString, value.String("")},
		{value.KindList, value.List()},
		{value.KindMap, value.FromMap(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			got, err := value.EmptyOf(tt.kind)
			if err != nil {
				t.Fatalf("EmptyOf(%s) error = %v", tt.kind, err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("EmptyOf(%s) mismatch (-want +got):\n%s", tt.kind, diff)
			}
		})
	}

	t.Run("unsupported kinds", func(t *testing.T) {
		t.Parallel()

		for _, kind := range []value.Kind{value.KindUndefined, value.Kind(42)} {
			if _, err := value.EmptyOf(kind); !errors.Is(err, value.ErrUnsupportedKind) {
				t.Errorf("EmptyOf(%s) error = %v, want ErrUnsupportedKind", kind, err)
			}
		}
	})
}

func TestEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b value.Value
		want bool
	}{
		{
			name: "map order is not significant",
			a:    mustJSON(t, `{"a":1,"b":[true,null]}`),
			b:    mustJSON(t, `{"b":[true,null],"a":1}`),
			want: true,
		},
		{
			name: "list order is significant",
			a:    mustJSON(t, `[1,2]`),
			b:    mustJSON(t, `[2,1]`),
			want: false,
		},
		{
			name: "int and float differ",
			a:    value.Int(1),
			b:    value.Float(1),
			want: false,
		},
		{
			name: "missing key",
			a:    mustJSON(t, `{"a":1}`),
			b:    mustJSON(t, `{"a":1,"b":2}`),
			want: false,
		},
		{
			name: "opaque payloads",
			a:    value.Opaque("handle"),
			b:    value.Opaque("handle"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	t.Parallel()

	orig := mustJSON(t, `{"outer":{"inner":"x"}}`)
	clone := orig.Clone()

	outer, _ := clone.Get("outer").Map()
	outer.Set("inner", value.String("changed"))

	if got, _ := orig.Get("outer").Get("inner").Str(); got != "x" {
		t.Errorf("original changed through clone: inner = %q", got)
	}
}

func TestMapSetUndefinedDeletes(t *testing.T) {
	t.Parallel()

	m := value.NewMap().Set("a", value.Int(1)).Set("b", value.Int(2))
	m.Set("a", value.Undefined())

	if diff := cmp.Diff([]string{"b"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnionKeys(t *testing.T) {
	t.Parallel()

	left, _ := mustJSON(t, `{"b":1,"a":2}`).Map()
	right, _ := mustJSON(t, `{"c":1,"a":3,"d":4}`).Map()

	want := []string{"b", "a", "c", "d"}
	if diff := cmp.Diff(want, value.UnionKeys(left, right)); diff != "" {
		t.Errorf("UnionKeys() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromAny(t *testing.T) {
	t.Parallel()

	got, err := value.FromAny(map[string]any{
		"z":    "last",
		"a":    []any{1, 2.5, true, nil},
		"big":  uint64(1 << 63),
		"nest": map[string]any{"k": int32(7)},
	})
	if err != nil {
		t.Fatalf("FromAny() error = %v", err)
	}

	want := mustJSON(t, `{"a":[1,2.5,true,null],"big":9223372036854775808,"nest":{"k":7},"z":"last"}`)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromAny() mismatch (-want +got):\n%s", diff)
	}

	m, _ := got.Map()
	if diff := cmp.Diff([]string{"a", "big", "nest", "z"}, m.Keys()); diff != "" {
		t.Errorf("FromAny() key order mismatch (-want +got):\n%s", diff)
	}

	if _, err := value.FromAny(struct{}{}); !errors.Is(err, value.ErrUnsupportedKind) {
		t.Errorf("FromAny(struct{}{}) error = %v, want ErrUnsupportedKind", err)
	}
}

func TestInterfaceRoundTrip(t *testing.T) {
	t.Parallel()

	v := mustJSON(t, `{"a":[1,"two",3.5],"b":{"c":null,"d":false}}`)

	back, err := value.FromAny(v.Interface())
	if err != nil {
		t.Fatalf("FromAny(Interface()) error = %v", err)
	}

	if !back.Equal(v) {
		t.Errorf("FromAny(Interface()) = %v, want %v", back, v)
	}
}

func TestSorted(t *testing.T) {
	t.Parallel()

	v, err := value.DecodeJSON([]byte(`{"b":1,"a":[{"z":1,"y":2}],"c":{"k":{},"j":null}}`))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	sorted := v.Sorted()

	if !sorted.Equal(v) {
		t.Errorf("Sorted() = %s, want a value equal to %s", sorted, v)
	}

	if got, want := sorted.String(), `{"a":[{"y":2,"z":1}],"b":1,"c":{"j":null,"k":{}}}`; got != want {
		t.Errorf("Sorted() = %s, want %s", got, want)
	}

	if got := v.String(); got != `{"b":1,"a":[{"z":1,"y":2}],"c":{"k":{},"j":null}}` {
		t.Errorf("Sorted() modified its receiver: %s", got)
	}
}
