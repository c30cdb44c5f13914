package merge

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/objmerge/pkg/value"
)

// run holds the state of one top-level merge call. It is never shared
// between calls.
type run struct {
	*Merger

	depth int
	path  Path
}

func (m *Merger) newRun() *run {
	return &run{Merger: m, depth: -1}
}

func (r *run) currentPath() Path {
	return slices.Clone(r.path)
}

func (r *run) pathError(err error) error {
	return &PathError{Path: r.currentPath(), Err: errors.WithStack(err)}
}

// down enters a container. Fields merged until the matching up are one
// level deeper.
func (r *run) down() error {
	r.depth++

	if r.maxDepth > 0 && r.depth >= r.maxDepth {
		r.depth--

		return r.pathError(errors.Wrapf(ErrDepthExceeded, "limit %d", r.maxDepth))
	}

	return nil
}

func (r *run) up() {
	r.depth--
	r.path = r.path[:r.depth+1]
}

// mergeField merges one field's candidate values under the active state.
func (r *run) mergeField(key Segment, left, right value.Value) (value.Value, error) {
	r.path = append(r.path[:r.depth], key)

	if r.callback != nil {
		state := State{
			Recursive: r.recursive,
			Options:   r.opts,
			Depth:     r.depth,
			Path:      r.path,
			Key:       key,
			Left:      left,
			Right:     right,
		}.clonePath()

		res, err := r.callback(state)
		if err != nil {
			return value.Value{}, &PathError{Path: r.currentPath(), Err: errors.Mark(err, ErrCallbackFailed)}
		}

		switch res.kind {
		case resultFinal:
			r.log.Debug("callback set final value", "path", r.path.String())

			return res.value.Clone(), nil
		case resultSubstitute:
			left, right = res.left.Clone(), res.right
		case resultContinue:
		}
	}

	return r.resolve(left, right)
}

// resolve applies undefined handling, the type conflict policy and the
// recursion policy to a pair of operands.
func (r *run) resolve(left, right value.Value) (value.Value, error) {
	nullAsUndefined := r.opts.Has(NullAsUndefined)
	leftUndefined := value.IsUndefined(left, nullAsUndefined)
	rightUndefined := value.IsUndefined(right, nullAsUndefined)

	if leftUndefined && rightUndefined {
		if nullAsUndefined {
			return value.Null(), nil
		}

		return value.Value{}, r.pathError(ErrBothSidesUndefined)
	}

	if rightUndefined {
		return left, nil
	}

	if leftUndefined {
		empty, err := r.emptyOf(right.Kind())
		if err != nil {
			return value.Value{}, err
		}

		left = empty
	}

	if !value.KindsCompatible(left.Kind(), right.Kind()) {
		if r.opts.Has(ConflictException) {
			return value.Value{}, errors.WithStack(&TypeConflictError{
				Path:  r.currentPath(),
				Left:  left.Kind(),
				Right: right.Kind(),
			})
		}

		r.log.Debug("type conflict resolved by overwrite",
			"path", r.path.String(),
			"left", left.Kind().String(),
			"right", right.Kind().String(),
		)

		empty, err := r.emptyOf(right.Kind())
		if err != nil {
			return value.Value{}, err
		}

		return r.resolve(empty, right)
	}

	if !r.recursive || left.Kind().IsScalar() {
		return right.Clone(), nil
	}

	switch left.Kind() {
	case value.KindList:
		return r.mergeList(left.Items(), right.Items())
	case value.KindMap:
		leftMap, _ := left.Map()
		rightMap, _ := right.Map()

		return r.mergeMap(leftMap, rightMap)
	default:
		return value.Value{}, r.pathError(errors.Wrapf(value.ErrUnsupportedKind, "kind %s", left.Kind()))
	}
}

func (r *run) emptyOf(k value.Kind) (value.Value, error) {
	empty, err := value.EmptyOf(k)
	if err != nil {
		return value.Value{}, r.pathError(err)
	}

	return empty, nil
}

// mergeMap merges the union of keys of both maps, left's keys first.
func (r *run) mergeMap(left, right *value.Map) (value.Value, error) {
	if err := r.down(); err != nil {
		return value.Value{}, err
	}
	defer r.up()

	out := value.NewMap()

	for _, key := range value.UnionKeys(left, right) {
		l, _ := left.Get(key)
		rv, _ := right.Get(key)

		merged, err := r.mergeField(KeySegment(key), l, rv)
		if err != nil {
			return value.Value{}, err
		}

		out.Set(key, merged)
	}

	return value.FromMap(out), nil
}
