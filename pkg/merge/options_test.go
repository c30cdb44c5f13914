package merge_test

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/objmerge/pkg/merge"
)

func TestParseOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      []string
		want    merge.Options
		wantErr bool
	}{
		{name: "none", in: nil, want: merge.DefaultOptions},
		{name: "overwrite only", in: []string{"conflict_overwrite"}, want: merge.ConflictOverwrite},
		{name: "single", in: []string{"unique_arrays"}, want: merge.UniqueArrays},
		{
			name: "combined with dashes and case",
			in:   []string{"Conflict-Exception", "MERGE_ARRAY_VALUES", " null_as_undefined "},
			want: merge.ConflictException | merge.MergeArrayValues | merge.NullAsUndefined,
		},
		{name: "empty names ignored", in: []string{"", "unique_arrays"}, want: merge.UniqueArrays},
		{name: "unknown", in: []string{"unique_arrays", "sort_keys"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := merge.ParseOptions(tt.in...)
			if tt.wantErr {
				if !errors.Is(err, merge.ErrUnknownOption) {
					t.Errorf("ParseOptions() error = %v, want ErrUnknownOption", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseOptions() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("ParseOptions() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOptionsString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		opts merge.Options
		want string
	}{
		{merge.DefaultOptions, "conflict_overwrite"},
		{merge.ConflictException, "conflict_exception"},
		{merge.UniqueArrays | merge.NullAsUndefined, "unique_arrays|null_as_undefined"},
		{
			merge.ConflictException | merge.UniqueArrays | merge.MergeArrayValues | merge.NullAsUndefined,
			"conflict_exception|unique_arrays|merge_array_values|null_as_undefined",
		},
		{merge.Options(0x10), "0x10"},
		{merge.UniqueArrays | merge.Options(0x20), "unique_arrays|0x20"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := tt.opts.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptionsWith(t *testing.T) {
	t.Parallel()

	opts := merge.DefaultOptions.With(merge.UniqueArrays, true).With(merge.NullAsUndefined, true)
	if !opts.Has(merge.UniqueArrays) || !opts.Has(merge.NullAsUndefined) {
		t.Fatalf("With() = %s, want unique_arrays|null_as_undefined", opts)
	}

	opts = opts.With(merge.UniqueArrays, false)
	if opts != merge.NullAsUndefined {
		t.Errorf("With(false) = %s, want null_as_undefined", opts)
	}
}
