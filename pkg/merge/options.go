package merge

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Options is a bitmask of independent merge flags, combined with |.
type Options uint8

const (
	// ConflictOverwrite resolves type conflicts by letting the incoming value win.
	// It is the zero value and the default.
	ConflictOverwrite Options = 0x0
	// ConflictException fails the merge with a TypeConflictError on type mismatches.
	ConflictException Options = 0x1
	// UniqueArrays removes duplicate elements from every merged list, keeping the first.
	UniqueArrays Options = 0x2
	// MergeArrayValues merges lists position by position instead of concatenating them.
	MergeArrayValues Options = 0x4
	// NullAsUndefined treats null as an absent value.
	NullAsUndefined Options = 0x8
)

// DefaultOptions overwrites on conflict, concatenates lists, keeps duplicates
// and treats null as a real value.
const DefaultOptions = ConflictOverwrite

var optionNames = []struct {
	flag Options
	name string
}{
	{ConflictException, "conflict_exception"},
	{UniqueArrays, "unique_arrays"},
	{MergeArrayValues, "merge_array_values"},
	{NullAsUndefined, "null_as_undefined"},
}

// OptionNames lists the names accepted by ParseOptions, in flag order.
func OptionNames() []string {
	names := make([]string, 0, len(optionNames))
	for _, o := range optionNames {
		names = append(names, o.name)
	}

	return names
}

// Has reports whether every bit of flag is set.
func (o Options) Has(flag Options) bool {
	return o&flag == flag
}

// With returns o with flag set or cleared.
func (o Options) With(flag Options, enabled bool) Options {
	if enabled {
		return o | flag
	}

	return o &^ flag
}

func (o Options) String() string {
	if o == ConflictOverwrite {
		return "conflict_overwrite"
	}

	var (
		parts []string
		known Options
	)

	for _, opt := range optionNames {
		known |= opt.flag

		if o.Has(opt.flag) {
			parts = append(parts, opt.name)
		}
	}

	if unknown := o &^ known; unknown != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint8(unknown)))
	}

	return strings.Join(parts, "|")
}

// ParseOptions combines option names such as "unique_arrays". Names are
// case-insensitive and may use dashes; "conflict_overwrite" adds nothing.
func ParseOptions(names ...string) (Options, error) {
	var opts Options

	for _, raw := range names {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
		if name == "" || name == "conflict_overwrite" {
			continue
		}

		found := false

		for _, opt := range optionNames {
			if opt.name == name {
				opts |= opt.flag
				found = true

				break
			}
		}

		if !found {
			return 0, errors.Wrapf(ErrUnknownOption, "%q (valid: %s)", raw, strings.Join(OptionNames(), ", "))
		}
	}

	return opts, nil
}
