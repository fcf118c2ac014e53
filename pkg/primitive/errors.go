package primitive

import (
	"errors"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// ErrAssertion matches every *AssertionError via errors.Is.
var ErrAssertion = errors.New("assertion failed")

// AssertionError is the single failure kind produced by this
// package and by every catalog check.
type AssertionError struct {
	Message  string
	Actual   any
	Expected any
	Operator string

	// Generated is true when Message was synthesized because the
	// caller supplied none.
	Generated bool
}

func newError(message string, actual, expected any, op string) *AssertionError {
	e := &AssertionError{
		Message:  message,
		Actual:   actual,
		Expected: expected,
		Operator: op,
	}
	if e.Message == "" {
		e.Message = describe(op, actual, expected)
		e.Generated = true
	}
	return e
}

// Error returns the failure message.
func (e *AssertionError) Error() string {
	return e.Message
}

// Is reports whether target is ErrAssertion.
func (e *AssertionError) Is(target error) bool {
	return target == ErrAssertion
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                8,
}

// Details renders the message followed by full dumps of the
// actual and expected values.
func (e *AssertionError) Details() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Operator != "" {
		b.WriteString("\noperator: ")
		b.WriteString(e.Operator)
	}
	b.WriteString("\nactual:   ")
	b.WriteString(strings.TrimSpace(dumper.Sdump(e.Actual)))
	b.WriteString("\nexpected: ")
	b.WriteString(strings.TrimSpace(dumper.Sdump(e.Expected)))
	return b.String()
}

// AsAssertion extracts the *AssertionError wrapped in err.
func AsAssertion(err error) (*AssertionError, bool) {
	var ae *AssertionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
