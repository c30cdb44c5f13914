// Package merge deep-merges JSON-shaped values with configurable conflict,
// recursion, list and null handling, and optional per-field callbacks.
package merge

import (
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/objmerge/pkg/logger"
	"github.com/smykla-skalski/objmerge/pkg/value"
)

// DefaultMaxDepth bounds container nesting unless WithMaxDepth overrides it.
const DefaultMaxDepth = 1024

// Merger folds maps into one. It is immutable once built and safe for
// concurrent use: every call keeps its own depth and path.
type Merger struct {
	recursive bool
	opts      Options
	callback  Callback
	maxDepth  int
	log       *logger.Logger
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithRecursive merges nested containers field by field instead of
// replacing them.
func WithRecursive(recursive bool) MergerOption {
	return func(m *Merger) { m.recursive = recursive }
}

// WithOptions sets the option flags.
func WithOptions(opts Options) MergerOption {
	return func(m *Merger) { m.opts = opts }
}

// WithCallback intercepts every field. A nil callback disables interception.
func WithCallback(cb Callback) MergerOption {
	return func(m *Merger) { m.callback = cb }
}

// WithMaxDepth limits container nesting. Zero or less disables the limit.
func WithMaxDepth(depth int) MergerOption {
	return func(m *Merger) { m.maxDepth = depth }
}

// WithLogger sets the logger used for debug records.
func WithLogger(log *logger.Logger) MergerOption {
	return func(m *Merger) {
		if log != nil {
			m.log = log
		}
	}
}

// New returns a shallow, overwrite-on-conflict Merger adjusted by opts.
func New(opts ...MergerOption) *Merger {
	m := &Merger{
		opts:     DefaultOptions,
		maxDepth: DefaultMaxDepth,
		log:      logger.Discard(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Recursive reports whether m descends into nested containers.
func (m *Merger) Recursive() bool { return m.recursive }

// Options returns the option flags of m.
func (m *Merger) Options() Options { return m.opts }

// Merge folds inputs left to right. Null and undefined inputs are skipped,
// the first remaining input is copied and every later one is merged into
// the copy. Top-level keys are always unioned; nested values follow the
// recursive setting. Without remaining inputs the result is Null.
// Inputs are never modified and the result shares nothing with them.
func (m *Merger) Merge(inputs ...value.Value) (value.Value, error) {
	r := m.newRun()

	var (
		acc   value.Value
		found bool
	)

	for i, in := range inputs {
		if in.IsUndefined() || in.IsNull() {
			continue
		}

		if in.Kind() != value.KindMap {
			return value.Value{}, errors.Wrapf(ErrInvalidInput, "input %d is %s", i, in.Kind())
		}

		if !found {
			acc = in.Clone()
			found = true

			continue
		}

		left, _ := acc.Map()
		right, _ := in.Map()

		merged, err := r.mergeMap(left, right)
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "merging input %d", i)
		}

		acc = merged
	}

	if !found {
		return value.Null(), nil
	}

	return acc, nil
}

// MergeInto merges others onto a copy of root, which must be a map.
func (m *Merger) MergeInto(root value.Value, others ...value.Value) (value.Value, error) {
	if root.Kind() != value.KindMap {
		return value.Value{}, errors.Wrapf(ErrInvalidInput, "root is %s", root.Kind())
	}

	return m.Merge(append([]value.Value{root}, others...)...)
}

// Merge shallow-merges inputs with the default options.
func Merge(inputs ...value.Value) (value.Value, error) {
	return New().Merge(inputs...)
}

// MergeOpts shallow-merges inputs with opts.
func MergeOpts(opts Options, inputs ...value.Value) (value.Value, error) {
	return New(WithOptions(opts)).Merge(inputs...)
}

// MergeRecursive deep-merges inputs with the default options.
func MergeRecursive(inputs ...value.Value) (value.Value, error) {
	return New(WithRecursive(true)).Merge(inputs...)
}

// MergeRecursiveOpts deep-merges inputs with opts.
func MergeRecursiveOpts(opts Options, inputs ...value.Value) (value.Value, error) {
	return New(WithRecursive(true), WithOptions(opts)).Merge(inputs...)
}

// MergeCallback shallow-merges inputs, calling cb for every field.
func MergeCallback(opts Options, cb Callback, inputs ...value.Value) (value.Value, error) {
	return New(WithOptions(opts), WithCallback(cb)).Merge(inputs...)
}

// MergeRecursiveCallback deep-merges inputs, calling cb for every field.
func MergeRecursiveCallback(opts Options, cb Callback, inputs ...value.Value) (value.Value, error) {
	return New(WithRecursive(true), WithOptions(opts), WithCallback(cb)).Merge(inputs...)
}
