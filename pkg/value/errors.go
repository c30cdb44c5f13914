package value

import "github.com/cockroachdb/errors"

var (
	// ErrUnsupportedKind indicates a value outside the closed set of kinds
	ErrUnsupportedKind = errors.New("unsupported value kind")
	// ErrDecode indicates input that could not be decoded into a Value
	ErrDecode = errors.New("failed to decode value")
	// ErrEncode indicates a Value that could not be encoded
	ErrEncode = errors.New("failed to encode value")
)
