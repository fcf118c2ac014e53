package assertion

// Handler holds a subject value and its optional description.
// Every catalog check is reachable through Run; the built-in
// ones also have named methods below.
type Handler struct {
	engine      *Engine
	value       any
	description string
}

// Value returns the wrapped subject.
func (h *Handler) Value() any { return h.value }

// Description returns the label given at construction, or "".
func (h *Handler) Description() string { return h.description }

// Run invokes the named check. Two-arg checks take (expected,
// message); one-arg checks take (message). The message is
// optional and must be a string. The returned value is whatever
// the check returns.
func (h *Handler) Run(name string, args ...any) (any, error) {
	return h.engine.dispatch(h, name, args)
}

func (h *Handler) unary(name string, message []string) error {
	_, err := h.Run(name, messageArgs(message)...)
	return err
}

func (h *Handler) binary(name string, expected any, message []string) error {
	_, err := h.Run(name, append([]any{expected}, messageArgs(message)...)...)
	return err
}

func messageArgs(message []string) []any {
	if len(message) == 0 {
		return nil
	}
	return []any{message[0]}
}

// Equals asserts strict equality with expected.
func (h *Handler) Equals(expected any, message ...string) error {
	return h.binary("equals", expected, message)
}

// IsEqualTo asserts strict equality with expected.
func (h *Handler) IsEqualTo(expected any, message ...string) error {
	return h.binary("isEqualTo", expected, message)
}

// IsNotEqualTo asserts strict inequality with expected.
func (h *Handler) IsNotEqualTo(expected any, message ...string) error {
	return h.binary("isNotEqualTo", expected, message)
}

// IsSimilarTo asserts loose equality with expected.
func (h *Handler) IsSimilarTo(expected any, message ...string) error {
	return h.binary("isSimilarTo", expected, message)
}

// IsNotSimilarTo asserts loose inequality with expected.
func (h *Handler) IsNotSimilarTo(expected any, message ...string) error {
	return h.binary("isNotSimilarTo", expected, message)
}

// IsSameAs asserts deep equality with expected.
func (h *Handler) IsSameAs(expected any, message ...string) error {
	return h.binary("isSameAs", expected, message)
}

// IsNotSameAs asserts deep inequality with expected.
func (h *Handler) IsNotSameAs(expected any, message ...string) error {
	return h.binary("isNotSameAs", expected, message)
}

// IsOfType asserts the subject's kind tag equals kind.
func (h *Handler) IsOfType(kind string, message ...string) error {
	return h.binary("isOfType", kind, message)
}

// IsTrue asserts the subject is the boolean true.
func (h *Handler) IsTrue(message ...string) error { return h.unary("isTrue", message) }

// IsFalse asserts the subject is the boolean false.
func (h *Handler) IsFalse(message ...string) error { return h.unary("isFalse", message) }

// IsDefined asserts the subject is not Undefined.
func (h *Handler) IsDefined(message ...string) error { return h.unary("isDefined", message) }

// IsNotDefined asserts the subject is Undefined.
func (h *Handler) IsNotDefined(message ...string) error { return h.unary("isNotDefined", message) }

// Pass always succeeds.
func (h *Handler) Pass(message ...string) error { return h.unary("pass", message) }

// Fail always fails with the message.
func (h *Handler) Fail(message ...string) error { return h.unary("fail", message) }

// ThrowsError calls the subject, which must be a function taking
// no arguments, and asserts that it returned a non-nil error or
// panicked with one. The caught error is returned.
func (h *Handler) ThrowsError(message ...string) (error, error) {
	caught, err := h.Run("throwsError", messageArgs(message)...)
	return asError(caught), err
}

// ThrowsErrorWithMessage is ThrowsError that also requires the
// caught error's text to equal expected.
func (h *Handler) ThrowsErrorWithMessage(expected string, message ...string) (error, error) {
	caught, err := h.Run("throwsErrorWithMessage", append([]any{expected}, messageArgs(message)...)...)
	return asError(caught), err
}

func asError(v any) error {
	err, _ := v.(error)
	return err
}

// IsString asserts the subject is a string.
func (h *Handler) IsString(message ...string) error { return h.unary("isString", message) }

// IsNotString asserts the subject is not a string.
func (h *Handler) IsNotString(message ...string) error { return h.unary("isNotString", message) }

// IsArray asserts the subject is a slice or array.
func (h *Handler) IsArray(message ...string) error { return h.unary("isArray", message) }

// IsNotArray asserts the subject is neither a slice nor an array.
func (h *Handler) IsNotArray(message ...string) error { return h.unary("isNotArray", message) }

// IsObject asserts the subject has the object kind tag: maps, structs and other composites.
func (h *Handler) IsObject(message ...string) error { return h.unary("isObject", message) }

// IsNotObject asserts the subject does not have the object kind tag.
func (h *Handler) IsNotObject(message ...string) error { return h.unary("isNotObject", message) }

// IsFunction asserts the subject is a function.
func (h *Handler) IsFunction(message ...string) error { return h.unary("isFunction", message) }

// IsNotFunction asserts the subject is not a function.
func (h *Handler) IsNotFunction(message ...string) error { return h.unary("isNotFunction", message) }

// IsRegExp asserts the subject is a *regexp.Regexp.
func (h *Handler) IsRegExp(message ...string) error { return h.unary("isRegExp", message) }

// IsNotRegExp asserts the subject is not a *regexp.Regexp.
func (h *Handler) IsNotRegExp(message ...string) error { return h.unary("isNotRegExp", message) }

// IsDate asserts the subject is a time.Time or a pointer to one.
func (h *Handler) IsDate(message ...string) error { return h.unary("isDate", message) }

// IsNotDate asserts the subject is not a time.Time.
func (h *Handler) IsNotDate(message ...string) error { return h.unary("isNotDate", message) }

// IsNumber asserts the subject is of a numeric kind.
func (h *Handler) IsNumber(message ...string) error { return h.unary("isNumber", message) }

// IsNotNumber asserts the subject is not of a numeric kind.
func (h *Handler) IsNotNumber(message ...string) error { return h.unary("isNotNumber", message) }

// IsBoolean asserts the subject is a bool.
func (h *Handler) IsBoolean(message ...string) error { return h.unary("isBoolean", message) }

// IsNotBoolean asserts the subject is not a bool.
func (h *Handler) IsNotBoolean(message ...string) error { return h.unary("isNotBoolean", message) }

// IsUndefined is IsNotDefined under the kind-tag name.
func (h *Handler) IsUndefined(message ...string) error { return h.unary("isUndefined", message) }

// IsNotUndefined is IsDefined under the kind-tag name.
func (h *Handler) IsNotUndefined(message ...string) error { return h.unary("isNotUndefined", message) }

// IsNull asserts the subject is nil or a nil reference.
func (h *Handler) IsNull(message ...string) error { return h.unary("isNull", message) }

// IsNotNull asserts the subject is neither nil nor a nil reference.
func (h *Handler) IsNotNull(message ...string) error { return h.unary("isNotNull", message) }

// IsError asserts the subject is an error.
func (h *Handler) IsError(message ...string) error { return h.unary("isError", message) }

// IsNotError asserts the subject is not an error.
func (h *Handler) IsNotError(message ...string) error { return h.unary("isNotError", message) }
