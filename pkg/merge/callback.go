package merge

import "github.com/smykla-skalski/objmerge/pkg/value"

// Callback intercepts every field before it is merged. Returning an error
// aborts the whole merge.
type Callback func(state State) (Result, error)

type resultKind uint8

const (
	resultContinue resultKind = iota
	resultFinal
	resultSubstitute
)

// Result tells the engine how to proceed with a field. The zero Result
// continues with the original operands.
type Result struct {
	kind  resultKind
	value value.Value
	left  value.Value
	right value.Value
}

// Continue resolves the field normally with the original operands.
func Continue() Result {
	return Result{kind: resultContinue}
}

// Final uses v verbatim for the field and skips any further descent.
// An Undefined v omits the field from the result.
func Final(v value.Value) Result {
	return Result{kind: resultFinal, value: v}
}

// Substitute replaces the operands and resolves the field normally with them.
// Passing value.Undefined() for a side marks it absent: an absent right keeps
// left as is, an absent left lets right be absorbed as a new field.
func Substitute(left, right value.Value) Result {
	return Result{kind: resultSubstitute, left: left, right: right}
}

// IsFinal reports whether r stops the merge of its field.
func (r Result) IsFinal() bool { return r.kind == resultFinal }

// IsContinue reports whether r leaves the operands untouched.
func (r Result) IsContinue() bool { return r.kind == resultContinue }

// Value returns the final value of a Final result.
func (r Result) Value() value.Value { return r.value }

// Operands returns the replacement operands of a Substitute result.
func (r Result) Operands() (left, right value.Value) { return r.left, r.right }

func (r Result) String() string {
	switch r.kind {
	case resultFinal:
		return "final(" + r.value.String() + ")"
	case resultSubstitute:
		return "substitute(" + r.left.String() + ", " + r.right.String() + ")"
	default:
		return "continue"
	}
}
