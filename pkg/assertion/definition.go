// Package assertion is a fluent assertion layer for test suites.
// A Handler wraps a produced value and an optional description;
// calling a named check on it dispatches through a Catalog of
// checks, building a readable failure message when the caller
// gives none.
package assertion

import "fmt"

// Arity says which argument shape a Check takes.
type Arity int

const (
	// OneArg checks take the subject and an optional message.
	OneArg Arity = 1
	// TwoArg checks also take an expected value.
	TwoArg Arity = 2
)

// String returns the arity as used in listings.
func (a Arity) String() string {
	switch a {
	case OneArg:
		return "one-arg"
	case TwoArg:
		return "two-arg"
	default:
		return fmt.Sprintf("arity(%d)", int(a))
	}
}

// Check describes one named catalog entry. Exactly one of
// UnaryFn and BinaryFn is set, matching Arity.
type Check struct {
	// Name is the catalog key, in camel case ("isEqualTo").
	Name string

	Arity    Arity
	UnaryFn  UnaryFunc
	BinaryFn BinaryFunc

	// HideValue keeps the subject out of default messages.
	HideValue bool

	// HideExpected, when set and returning true for the call's
	// expected value, keeps that value out of default messages.
	HideExpected func(expected any) bool

	// PrintDetails renders the subject verbosely in default
	// messages.
	PrintDetails bool
}

// CheckOption configures a Check built by NewUnary or NewBinary.
type CheckOption func(*Check)

// HideValue omits the subject from default messages.
func HideValue() CheckOption {
	return func(c *Check) {
		c.HideValue = true
	}
}

// HideExpectedWhen omits the expected value from default
// messages whenever pred returns true for it.
func HideExpectedWhen(pred func(expected any) bool) CheckOption {
	return func(c *Check) {
		c.HideExpected = pred
	}
}

// PrintDetails renders the subject verbosely in default
// messages.
func PrintDetails() CheckOption {
	return func(c *Check) {
		c.PrintDetails = true
	}
}

// NewUnary builds a one-arg Check.
func NewUnary(name string, fn UnaryFunc, opts ...CheckOption) Check {
	c := Check{Name: name, Arity: OneArg, UnaryFn: fn}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewBinary builds a two-arg Check.
func NewBinary(name string, fn BinaryFunc, opts ...CheckOption) Check {
	c := Check{Name: name, Arity: TwoArg, BinaryFn: fn}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Check) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCheck)
	}
	switch c.Arity {
	case OneArg:
		if c.UnaryFn == nil || c.BinaryFn != nil {
			return fmt.Errorf("%w: %s must set only UnaryFn", ErrInvalidCheck, c.Name)
		}
	case TwoArg:
		if c.BinaryFn == nil || c.UnaryFn != nil {
			return fmt.Errorf("%w: %s must set only BinaryFn", ErrInvalidCheck, c.Name)
		}
	default:
		return fmt.Errorf("%w: %s has %s", ErrInvalidCheck, c.Name, c.Arity)
	}
	return nil
}

func (c Check) hidesExpected(expected any) bool {
	return c.HideExpected != nil && c.HideExpected(expected)
}
