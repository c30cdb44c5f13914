package merge

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/smykla-skalski/objmerge/pkg/value"
)

// Segment is one step of a Path: a map key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns a map key segment.
func KeySegment(key string) Segment { return Segment{Key: key} }

// IndexSegment returns a list index segment.
func IndexSegment(i int) Segment { return Segment{Index: i, IsIndex: true} }

var plainKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}

	return s.Key
}

// appendTo writes s in JSONPath notation.
func (s Segment) appendTo(sb *strings.Builder) {
	switch {
	case s.IsIndex:
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(s.Index))
		sb.WriteByte(']')
	case plainKey.MatchString(s.Key):
		sb.WriteByte('.')
		sb.WriteString(s.Key)
	default:
		sb.WriteString("[")
		sb.WriteString(strconv.Quote(s.Key))
		sb.WriteString("]")
	}
}

// Path lists the segments from the root to a field.
type Path []Segment

// String renders p as a JSONPath expression, e.g. $.spec.items[0]["a.b"].
func (p Path) String() string {
	var sb strings.Builder

	sb.WriteByte('$')

	for _, s := range p {
		s.appendTo(&sb)
	}

	return sb.String()
}

// Key returns the last segment rendered as text, or "" for the root.
func (p Path) Key() string {
	if len(p) == 0 {
		return ""
	}

	return p[len(p)-1].String()
}

// State is the snapshot handed to a Callback for one field. Left and Right
// share containers with the merge inputs and must be treated as read-only;
// values returned through Final or Substitute are copied by the engine.
type State struct {
	// Recursive is true when nested containers are merged field by field.
	Recursive bool
	// Options are the active merge options.
	Options Options
	// Depth is 0 for top-level fields and grows by one per nested container.
	Depth int
	// Path locates the field from the root and ends with Key.
	Path Path
	// Key is the field being merged.
	Key Segment
	// Left is the accumulated value, Undefined when the field is new. Read-only.
	Left value.Value
	// Right is the incoming value, Undefined when the input lacks the field. Read-only.
	Right value.Value
}

func (s State) clonePath() State {
	s.Path = slices.Clone(s.Path)

	return s
}
