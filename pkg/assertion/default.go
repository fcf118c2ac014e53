package assertion

var defaultEngine = NewEngine()

// Default returns the process-wide engine behind That, Pass and
// Fail.
func Default() *Engine {
	return defaultEngine
}

// That wraps value for assertion on the default engine.
//
//	err := assertion.That(count, "count").IsEqualTo(6)
func That(value any, description ...string) *Handler {
	return defaultEngine.That(value, description...)
}

// Pass is That(Undefined).Pass(message...).
func Pass(message ...string) error {
	return defaultEngine.Pass(message...)
}

// Fail is That(Undefined).Fail(message...).
func Fail(message ...string) error {
	return defaultEngine.Fail(message...)
}

// TB is the part of testing.TB the test adapter needs.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
}

// ForT returns an engine that reports every failure to t, so
// tests can ignore the returned errors:
//
//	a := assertion.ForT(t)
//	a.That(got, "status").IsEqualTo(200)
func ForT(t TB, opts ...EngineOption) *Engine {
	return defaultEngine.With(opts...).With(WithFailureHook(func(err error) {
		t.Helper()
		t.Errorf("%v", err)
	}))
}
