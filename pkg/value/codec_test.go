package value_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/smykla-skalski/objmerge/pkg/value"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantKind value.Kind
		wantJSON string
	}{
		{name: "integer", input: `9007199254740991`, wantKind: value.KindInt, wantJSON: `9007199254740991`},
		{name: "max int64", input: `9223372036854775807`, wantKind: value.KindInt, wantJSON: `9223372036854775807`},
		{name: "overflowing integer becomes float", input: `9223372036854775808`, wantKind: value.KindFloat, wantJSON: `9.223372036854776e+18`},
		{name: "fraction", input: `1.5`, wantKind: value.KindFloat, wantJSON: `1.5`},
		{name: "integral float keeps its kind", input: `2.0`, wantKind: value.KindFloat, wantJSON: `2.0`},
		{name: "exponent", input: `1e3`, wantKind: value.KindFloat, wantJSON: `1000.0`},
		{name: "null", input: `null`, wantKind: value.KindNull, wantJSON: `null`},
		{name: "string with html", input: `"<a&b>"`, wantKind: value.KindString, wantJSON: `"<a&b>"`},
		{name: "key order preserved", input: `{"z":1,"a":2,"m":3}`, wantKind: value.KindMap, wantJSON: `{"z":1,"a":2,"m":3}`},
		{name: "empty containers", input: `{"l":[],"m":{}}`, wantKind: value.KindMap, wantJSON: `{"l":[],"m":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := value.DecodeJSON([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeJSON() error = %v", err)
			}

			if got.Kind() != tt.wantKind {
				t.Errorf("DecodeJSON() kind = %s, want %s", got.Kind(), tt.wantKind)
			}

			if s := got.String(); s != tt.wantJSON {
				t.Errorf("String() = %s, want %s", s, tt.wantJSON)
			}
		})
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{``, `{`, `{"a":1} {"b":2}`, `[1,]`} {
		if _, err := value.DecodeJSON([]byte(input)); !errors.Is(err, value.ErrDecode) {
			t.Errorf("DecodeJSON(%q) error = %v, want ErrDecode", input, err)
		}
	}
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	input := `
zeta: 1
alpha:
  - one
  - 2.5
  - true
  - null
anchor: &base
  x: 1
copy: *base
when: 2024-01-02
`

	got, err := value.DecodeYAML([]byte(input))
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v", err)
	}

	want := `{"zeta":1,"alpha":["one",2.5,true,null],"anchor":{"x":1},"copy":{"x":1},"when":"2024-01-02"}`
	if s := got.String(); s != want {
		t.Errorf("DecodeYAML() = %s, want %s", s, want)
	}

	empty, err := value.DecodeYAML(nil)
	if err != nil {
		t.Fatalf("DecodeYAML(nil) error = %v", err)
	}

	if !empty.IsNull() {
		t.Errorf("DecodeYAML(nil) = %v, want null", empty)
	}
}

func TestDecodeYAMLMergeKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single map",
			input: "base: &b {x: 1}\nchild: {<<: *b, y: 2}\n",
			want:  `{"base":{"x":1},"child":{"x":1,"y":2}}`,
		},
		{
			name:  "explicit key after merge wins",
			input: "base: &b {x: 1, z: 3}\nchild: {<<: *b, x: 5}\n",
			want:  `{"base":{"x":1,"z":3},"child":{"x":5,"z":3}}`,
		},
		{
			name:  "explicit key before merge wins",
			input: "base: &b {x: 1}\nchild: {x: 5, <<: *b}\n",
			want:  `{"base":{"x":1},"child":{"x":5}}`,
		},
		{
			name:  "earlier source in list wins",
			input: "a: &a {x: 1}\nb: &b {x: 2, y: 2}\nchild: {<<: [*a, *b]}\n",
			want:  `{"a":{"x":1},"b":{"x":2,"y":2},"child":{"x":1,"y":2}}`,
		},
		{
			name:  "inline map",
			input: "child: {<<: {x: 1}, y: 2}\n",
			want:  `{"child":{"x":1,"y":2}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := value.DecodeYAML([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeYAML() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, got.String()); diff != "" {
				t.Errorf("DecodeYAML() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeYAMLMergeKeyNotMap(t *testing.T) {
	t.Parallel()

	_, err := value.DecodeYAML([]byte("child: {<<: 1, y: 2}\n"))
	if !errors.Is(err, value.ErrDecode) {
		t.Errorf("DecodeYAML() error = %v, want ErrDecode", err)
	}
}

func TestDecodeYAMLExpansionLimit(t *testing.T) {
	t.Parallel()

	var b strings.Builder

	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")

	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "l%d: &l%d [", i, i)

		for j := range 10 {
			if j > 0 {
				b.WriteString(", ")
			}

			fmt.Fprintf(&b, "*l%d", i-1)
		}

		b.WriteString("]\n")
	}

	_, err := value.DecodeYAML([]byte(b.String()))
	if !errors.Is(err, value.ErrDecode) {
		t.Fatalf("DecodeYAML() error = %v, want ErrDecode", err)
	}

	if !strings.Contains(err.Error(), "nodes") {
		t.Errorf("DecodeYAML() error = %v, want node limit error", err)
	}
}

func TestEncodeJSON(t *testing.T) {
	t.Parallel()

	v, err := value.DecodeJSON([]byte(`{"b":{"y":1,"x":2},"a":[1,2,3]}`))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	t.Run("compact sorted", func(t *testing.T) {
		t.Parallel()

		got, err := value.EncodeJSON(v, value.EncodeOptions{Compact: true, SortKeys: true})
		if err != nil {
			t.Fatalf("EncodeJSON() error = %v", err)
		}

		want := `{"a":[1,2,3],"b":{"x":2,"y":1}}`
		if string(got) != want {
			t.Errorf("EncodeJSON() = %s, want %s", got, want)
		}
	})

	t.Run("pretty keeps insertion order", func(t *testing.T) {
		t.Parallel()

		got, err := value.EncodeJSON(v, value.EncodeOptions{})
		if err != nil {
			t.Fatalf("EncodeJSON() error = %v", err)
		}

		if !strings.Contains(string(got), "\n") || strings.HasSuffix(string(got), "\n") {
			t.Errorf("EncodeJSON() = %q, want multi-line output without trailing newline", got)
		}

		if strings.Index(string(got), `"b"`) > strings.Index(string(got), `"a"`) {
			t.Errorf("EncodeJSON() reordered keys:\n%s", got)
		}

		back, err := value.DecodeJSON(got)
		if err != nil {
			t.Fatalf("DecodeJSON() error = %v", err)
		}

		if diff := cmp.Diff(v, back); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("undefined cannot be encoded", func(t *testing.T) {
		t.Parallel()

		if _, err := value.EncodeJSON(value.Undefined(), value.EncodeOptions{}); !errors.Is(err, value.ErrEncode) {
			t.Errorf("EncodeJSON(Undefined) error = %v, want ErrEncode", err)
		}
	})
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := value.DecodeJSON([]byte(`{"z":"true","a":[1,2.0,null],"m":{"k":"v"},"e":{}}`))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	out, err := value.EncodeYAML(v)
	if err != nil {
		t.Fatalf("EncodeYAML() error = %v", err)
	}

	back, err := value.DecodeYAML(out)
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v\n%s", err, out)
	}

	if diff := cmp.Diff(v, back); diff != "" {
		t.Errorf("YAML round trip mismatch (-want +got):\n%s\n%s", diff, out)
	}

	m, _ := back.Map()
	if diff := cmp.Diff([]string{"z", "a", "m", "e"}, m.Keys()); diff != "" {
		t.Errorf("YAML round trip key order mismatch (-want +got):\n%s", diff)
	}
}
