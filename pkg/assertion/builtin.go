package assertion

import (
	"reflect"
	"strings"

	"digital.vasic.pavlov/pkg/introspect"
	"digital.vasic.pavlov/pkg/primitive"
)

// defaultCatalog backs NewEngine and the package-level helpers.
var defaultCatalog = Builtins().Freeze()

// Builtins returns a fresh, unfrozen catalog holding every
// built-in check, ready to be extended.
func Builtins() *Catalog {
	c := NewCatalog()
	registerBuiltins(c)
	return c
}

// kindChecks are the kinds that get an is<Kind>/isNot<Kind>
// pair.
var kindChecks = []string{
	"String",
	"Array",
	"Object",
	"Function",
	"RegExp",
	"Date",
	"Number",
	"Boolean",
	"Undefined",
	"Null",
	"Error",
}

// registerBuiltins registers all built-in checks in listing
// order.
func registerBuiltins(c *Catalog) {
	c.MustRegister(
		NewBinary("equals", checkStrictEqual),
		NewBinary("isSimilarTo", checkSimilarTo),
		NewBinary("isNotSimilarTo", checkNotSimilarTo),
		NewBinary("isEqualTo", checkStrictEqual),
		NewBinary("isNotEqualTo", checkNotStrictEqual),
		NewBinary("isOfType", checkOfType),
		NewUnary("isTrue", checkTrue),
		NewUnary("isFalse", checkFalse),
		NewUnary("isDefined", checkDefined),
		NewUnary("isNotDefined", checkNotDefined),
		NewBinary("isSameAs", checkSameAs),
		NewBinary("isNotSameAs", checkNotSameAs),
		NewUnary("pass", checkPass, HideValue()),
		NewUnary("fail", checkFail, HideValue()),
		NewUnary("throwsError", checkThrowsError),
		NewBinary("throwsErrorWithMessage", checkThrowsErrorWithMessage),
	)

	for _, name := range kindChecks {
		c.MustRegister(NewUnary("is"+name, kindIs(strings.ToLower(name))))
	}
	for _, name := range kindChecks {
		c.MustRegister(NewUnary("isNot"+name, kindIsNot(strings.ToLower(name))))
	}
}

// checkStrictEqual backs equals and isEqualTo.
func checkStrictEqual(actual, expected any, message string) (any, error) {
	return nil, primitive.StrictEqual(actual, expected, message)
}

func checkNotStrictEqual(actual, expected any, message string) (any, error) {
	return nil, primitive.NotStrictEqual(actual, expected, message)
}

func checkSimilarTo(actual, expected any, message string) (any, error) {
	return nil, primitive.Equal(actual, expected, message)
}

func checkNotSimilarTo(actual, expected any, message string) (any, error) {
	return nil, primitive.NotEqual(actual, expected, message)
}

func checkSameAs(actual, expected any, message string) (any, error) {
	return nil, primitive.DeepEqual(actual, expected, message)
}

func checkNotSameAs(actual, expected any, message string) (any, error) {
	return nil, primitive.NotDeepEqual(actual, expected, message)
}

// checkOfType compares the subject's kind tag with expected.
func checkOfType(actual, expected any, message string) (any, error) {
	return nil, primitive.StrictEqual(introspect.Kind(actual), expected, message)
}

func checkTrue(actual any, message string) (any, error) {
	return nil, primitive.StrictEqual(actual, true, message)
}

func checkFalse(actual any, message string) (any, error) {
	return nil, primitive.StrictEqual(actual, false, message)
}

// checkDefined rejects both Undefined and nil.
func checkDefined(actual any, message string) (any, error) {
	kind := introspect.Kind(actual)
	if err := primitive.NotStrictEqual(kind, introspect.KindUndefined, message); err != nil {
		return nil, err
	}
	return nil, primitive.NotStrictEqual(kind, introspect.KindNull, message)
}

func checkNotDefined(actual any, message string) (any, error) {
	kind := introspect.Kind(actual)
	return nil, primitive.Ok(kind == introspect.KindUndefined || kind == introspect.KindNull, message)
}

func checkPass(_ any, message string) (any, error) {
	return nil, primitive.Ok(true, message)
}

func checkFail(_ any, message string) (any, error) {
	return nil, primitive.Ok(false, message)
}

func kindIs(kind string) UnaryFunc {
	return func(actual any, message string) (any, error) {
		return nil, primitive.StrictEqual(introspect.Kind(actual), kind, message)
	}
}

func kindIsNot(kind string) UnaryFunc {
	return func(actual any, message string) (any, error) {
		return nil, primitive.NotStrictEqual(introspect.Kind(actual), kind, message)
	}
}

// checkThrowsError calls actual and returns the error it raised.
func checkThrowsError(actual any, message string) (any, error) {
	if message == "" {
		message = "Expected error"
	}
	caught, err := capture(actual, message)
	if err != nil {
		return nil, err
	}
	return caught, nil
}

// checkThrowsErrorWithMessage is checkThrowsError plus a strict
// comparison of the caught error's text with expected.
func checkThrowsErrorWithMessage(actual, expected any, message string) (any, error) {
	if message == "" {
		message = "Expected error"
	}
	caught, err := capture(actual, message)
	if err != nil {
		return nil, err
	}
	if err := primitive.StrictEqual(caught.Error(), expected, message+" (error message does not match)"); err != nil {
		return nil, err
	}
	return caught, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// capture invokes fn and classifies what came out of it: a
// returned non-nil error and a panic carrying an error both
// count as thrown.
func capture(fn any, message string) (error, error) {
	if introspect.Kind(fn) != introspect.KindFunction || reflect.TypeOf(fn).NumIn() != 0 {
		return nil, primitive.Fail(message + " (value is not a function)")
	}

	thrown, raised := invoke(reflect.ValueOf(fn))
	if !raised {
		return nil, primitive.Fail(message + " (no error was thrown)")
	}

	caught, ok := thrown.(error)
	if !ok {
		return nil, primitive.StrictEqual(introspect.Kind(thrown), introspect.KindError,
			message+" (thrown object is not an Error)")
	}
	return caught, nil
}

func invoke(fn reflect.Value) (thrown any, raised bool) {
	defer func() {
		if r := recover(); r != nil {
			thrown, raised = r, true
		}
	}()

	out := fn.Call(nil)
	if len(out) == 0 {
		return nil, false
	}
	last := out[len(out)-1]
	if !last.Type().Implements(errorType) {
		return nil, false
	}
	switch last.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if last.IsNil() {
			return nil, false
		}
	}
	return last.Interface(), true
}
