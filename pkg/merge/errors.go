package merge

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/objmerge/pkg/value"
)

var (
	// ErrTypeConflict indicates incompatible kinds at a field under ConflictException
	ErrTypeConflict = errors.New("type conflict")
	// ErrBothSidesUndefined indicates a field that is absent on both sides of a merge
	ErrBothSidesUndefined = errors.New("both left and right values are undefined")
	// ErrDepthExceeded indicates input nested deeper than the configured limit
	ErrDepthExceeded = errors.New("maximum merge depth exceeded")
	// ErrInvalidInput indicates a top-level input that is not a map
	ErrInvalidInput = errors.New("merge inputs must be maps")
	// ErrCallbackFailed indicates a merge callback returned an error
	ErrCallbackFailed = errors.New("merge callback failed")
	// ErrUnknownOption indicates an option name that does not exist
	ErrUnknownOption = errors.New("unknown merge option")
)

// TypeConflictError reports a field whose kinds differ between the
// accumulated result and an incoming input.
type TypeConflictError struct {
	// Path locates the field from the root.
	Path Path
	// Left is the kind on the accumulated (root) side.
	Left value.Kind
	// Right is the kind on the incoming side.
	Right value.Kind
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("field %q has type %q on incoming object, but has type %q on the root object (path %s)",
		e.Path.Key(), e.Right, e.Left, e.Path)
}

func (e *TypeConflictError) Is(target error) bool {
	return target == ErrTypeConflict
}

// PathError attaches the location of a failing field to an error.
type PathError struct {
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
