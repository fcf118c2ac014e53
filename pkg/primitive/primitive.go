// Package primitive provides the low-level comparisons every
// catalog check is built on. Each function returns nil when its
// condition holds and an *AssertionError otherwise.
package primitive

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"digital.vasic.pavlov/pkg/introspect"
)

// Operators recorded on AssertionError.
const (
	OpOk             = "=="
	OpStrictEqual    = "strictEqual"
	OpNotStrictEqual = "notStrictEqual"
	OpEqual          = "equal"
	OpNotEqual       = "notEqual"
	OpDeepEqual      = "deepEqual"
	OpNotDeepEqual   = "notDeepEqual"
)

// Ok fails when cond is false.
func Ok(cond bool, message string) error {
	if cond {
		return nil
	}
	return newError(message, cond, true, OpOk)
}

// StrictEqual fails unless actual and expected are strictly
// equal: same dynamic type and equal by ==, or the same
// reference for slices, maps and funcs.
func StrictEqual(actual, expected any, message string) error {
	if strictlyEqual(actual, expected) {
		return nil
	}
	return newError(message, actual, expected, OpStrictEqual)
}

// NotStrictEqual is the negation of StrictEqual.
func NotStrictEqual(actual, expected any, message string) error {
	if !strictlyEqual(actual, expected) {
		return nil
	}
	return newError(message, actual, expected, OpNotStrictEqual)
}

// Equal fails unless actual and expected are loosely equal:
// strictly equal, equal after numeric conversion, or both
// absent (nil or Undefined).
func Equal(actual, expected any, message string) error {
	if looselyEqual(actual, expected) {
		return nil
	}
	return newError(message, actual, expected, OpEqual)
}

// NotEqual is the negation of Equal.
func NotEqual(actual, expected any, message string) error {
	if !looselyEqual(actual, expected) {
		return nil
	}
	return newError(message, actual, expected, OpNotEqual)
}

// DeepEqual fails unless actual and expected are structurally
// equal, unexported fields included.
func DeepEqual(actual, expected any, message string) error {
	if deeplyEqual(actual, expected) {
		return nil
	}
	return newError(message, actual, expected, OpDeepEqual)
}

// NotDeepEqual is the negation of DeepEqual.
func NotDeepEqual(actual, expected any, message string) error {
	if !deeplyEqual(actual, expected) {
		return nil
	}
	return newError(message, actual, expected, OpNotDeepEqual)
}

func absent(v any) bool {
	k := introspect.Kind(v)
	return k == introspect.KindNull || k == introspect.KindUndefined
}

func strictlyEqual(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		// Arrays and structs holding interfaces can still panic.
		defer func() {
			if recover() != nil {
				eq = false
			}
		}()
		return a == b
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

func looselyEqual(a, b any) bool {
	if strictlyEqual(a, b) {
		return true
	}
	if absent(a) || absent(b) {
		return absent(a) && absent(b)
	}
	return assert.ObjectsAreEqualValues(a, b)
}

var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

func deeplyEqual(a, b any) (eq bool) {
	if absent(a) && absent(b) {
		return true
	}
	defer func() {
		if recover() != nil {
			eq = assert.ObjectsAreEqual(a, b)
		}
	}()
	return cmp.Equal(a, b, exportAll)
}

// Fail always returns an AssertionError with the given message.
func Fail(message string) error {
	if message == "" {
		message = "Failed"
	}
	return &AssertionError{Message: message, Operator: "fail"}
}

func describe(op string, actual, expected any) string {
	switch op {
	case OpOk:
		return "The expression evaluated to a falsy value"
	case OpStrictEqual:
		return fmt.Sprintf("Expected values to be strictly equal: %s !== %s",
			introspect.Render(actual, false), introspect.Render(expected, false))
	case OpNotStrictEqual:
		return fmt.Sprintf(`Expected "actual" to be strictly unequal to: %s`,
			introspect.Render(expected, false))
	case OpDeepEqual:
		return fmt.Sprintf("Expected values to be deeply equal: %s != %s",
			introspect.Render(actual, false), introspect.Render(expected, false))
	case OpNotDeepEqual:
		return fmt.Sprintf(`Expected "actual" not to be deeply equal to: %s`,
			introspect.Render(expected, false))
	case OpNotEqual:
		return fmt.Sprintf("%s != %s",
			introspect.Render(actual, false), introspect.Render(expected, false))
	default:
		return fmt.Sprintf("%s == %s",
			introspect.Render(actual, false), introspect.Render(expected, false))
	}
}
