package assertion

// UnaryFunc implements a one-arg check. It returns a nil error
// when the check holds; the result is nil for most checks and
// the captured value for checks that hand one back.
type UnaryFunc func(value any, message string) (any, error)

// BinaryFunc implements a two-arg check against an expected
// value.
type BinaryFunc func(value, expected any, message string) (any, error)
