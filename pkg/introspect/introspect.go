// Package introspect classifies and renders arbitrary values for
// assertion messages. It never panics, whatever it is given.
package introspect

import (
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"time"
	"unicode"
)

// Kind tags returned by Kind.
const (
	KindUndefined = "undefined"
	KindNull      = "null"
	KindString    = "string"
	KindNumber    = "number"
	KindBoolean   = "boolean"
	KindArray     = "array"
	KindObject    = "object"
	KindFunction  = "function"
	KindRegExp    = "regexp"
	KindDate      = "date"
	KindError     = "error"
)

type undefined struct{}

func (undefined) String() string { return KindUndefined }

// Undefined marks a value that was never supplied, as opposed to
// one explicitly set to nil.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

var (
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	timeType   = reflect.TypeOf(time.Time{})
	regexpType = reflect.TypeOf(regexp.Regexp{})
)

// Kind returns the lowercase kind tag of v. It looks at the
// dynamic type only and never traverses v, so cyclic values are
// fine.
func Kind(v any) string {
	if IsUndefined(v) {
		return KindUndefined
	}
	if v == nil {
		return KindNull
	}

	rv := reflect.ValueOf(v)
	t := rv.Type()

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return KindNull
		}
	}

	if t.Implements(errorType) {
		return KindError
	}

	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	switch base {
	case timeType:
		return KindDate
	case regexpType:
		return KindRegExp
	}

	switch rv.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return KindNumber
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Func:
		return KindFunction
	default:
		return KindObject
	}
}

// Render converts v to a short human-readable form. Strings are
// quoted, arrays bracketed and functions collapsed to
// "function()" unless verbose is set.
func Render(v any, verbose bool) string {
	switch Kind(v) {
	case KindString:
		return `"` + reflect.ValueOf(v).String() + `"`
	case KindArray:
		return "[" + joinElements(reflect.ValueOf(v)) + "]"
	case KindFunction:
		if verbose {
			return describeFunc(reflect.ValueOf(v))
		}
		return "function()"
	}
	return plain(v)
}

// plain is the default string form of v: strings unquoted and
// arrays flattened without brackets.
func plain(v any) string {
	switch Kind(v) {
	case KindUndefined:
		return KindUndefined
	case KindNull:
		return KindNull
	case KindString:
		return reflect.ValueOf(v).String()
	case KindArray:
		return joinElements(reflect.ValueOf(v))
	case KindError:
		return safeError(v.(error))
	}
	return safeSprint(v)
}

// joinElements renders array elements comma separated, leaving
// nil and Undefined elements empty.
func joinElements(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		elem := rv.Index(i)
		if !elem.CanInterface() {
			parts[i] = "?"
			continue
		}
		ev := elem.Interface()
		switch Kind(ev) {
		case KindNull, KindUndefined:
			parts[i] = ""
		default:
			parts[i] = plain(ev)
		}
	}
	return strings.Join(parts, ",")
}

func describeFunc(rv reflect.Value) string {
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return "func " + rv.Type().String()
	}
	file, line := fn.FileLine(fn.Entry())
	return fmt.Sprintf("func %s %s (%s:%d)",
		fn.Name(), strings.TrimPrefix(rv.Type().String(), "func"), file, line)
}

func safeSprint(v any) (s string) {
	defer func() {
		if recover() != nil {
			s = fmt.Sprintf("<%T>", v)
		}
	}()
	return fmt.Sprint(v)
}

func safeError(err error) (s string) {
	defer func() {
		if recover() != nil {
			s = fmt.Sprintf("<%T>", err)
		}
	}()
	return err.Error()
}

// Phrase turns a camel or Pascal case identifier into a lowercase
// space separated phrase: "isNotEqualTo" becomes "is not equal
// to".
func Phrase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
