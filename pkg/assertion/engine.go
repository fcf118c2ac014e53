package assertion

import (
	"fmt"
	"strings"
	"time"

	"digital.vasic.pavlov/pkg/introspect"
	"digital.vasic.pavlov/pkg/logging"
)

// Outcome describes one finished check invocation.
type Outcome struct {
	Check       string
	Arity       Arity
	Description string
	Message     string
	Passed      bool
	Err         error
	Duration    time.Duration
}

// Observer is notified after every check invocation.
type Observer interface {
	ObserveCheck(o Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(o Outcome)

// ObserveCheck calls f(o).
func (f ObserverFunc) ObserveCheck(o Outcome) { f(o) }

// Engine dispatches named checks from a Catalog. An Engine is
// immutable once built and safe for concurrent use as long as
// its catalog is frozen.
type Engine struct {
	catalog   *Catalog
	logger    logging.Logger
	observers []Observer
	onFailure func(err error)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCatalog sets the catalog the engine dispatches from.
func WithCatalog(c *Catalog) EngineOption {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger logging.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver adds an observer notified after each check.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// WithFailureHook installs fn to be called with every error a
// dispatch returns. The error is still returned to the caller.
func WithFailureHook(fn func(err error)) EngineOption {
	return func(e *Engine) {
		e.onFailure = fn
	}
}

// NewEngine creates an Engine over the frozen built-in catalog
// unless WithCatalog says otherwise.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: defaultCatalog,
		logger:  logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// With returns a copy of e with opts applied on top.
func (e *Engine) With(opts ...EngineOption) *Engine {
	cp := *e
	cp.observers = append([]Observer(nil), e.observers...)
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Catalog returns the catalog the engine dispatches from.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// That wraps value for assertion. Only the first description is
// used; an empty one counts as none.
func (e *Engine) That(value any, description ...string) *Handler {
	h := &Handler{engine: e, value: value}
	if len(description) > 0 {
		h.description = description[0]
	}
	return h
}

// Pass runs the always-passing check without a subject.
func (e *Engine) Pass(message ...string) error {
	return e.That(introspect.Undefined).Pass(message...)
}

// Fail runs the always-failing check without a subject.
func (e *Engine) Fail(message ...string) error {
	return e.That(introspect.Undefined).Fail(message...)
}

// dispatch is the single place a check is invoked: it resolves
// the check, shapes its arguments, builds the default message
// when none was given and forwards the result unchanged.
func (e *Engine) dispatch(h *Handler, name string, args []any) (any, error) {
	check, ok := e.catalog.Lookup(name)
	if !ok {
		return nil, e.fail(fmt.Errorf("%w: %s", ErrUnknownCheck, name))
	}

	expected, message, err := splitArgs(check.Arity, args)
	if err != nil {
		return nil, e.fail(fmt.Errorf("%s: %w", name, err))
	}

	if message == "" {
		message = defaultMessage(check, h.value, h.description)
		if check.Arity == TwoArg && !check.hidesExpected(expected) {
			message += " " + introspect.Render(expected, false)
		}
	}

	start := time.Now()
	var result any
	if check.Arity == OneArg {
		result, err = check.UnaryFn(h.value, message)
	} else {
		result, err = check.BinaryFn(h.value, expected, message)
	}

	e.notify(Outcome{
		Check:       name,
		Arity:       check.Arity,
		Description: h.description,
		Message:     message,
		Passed:      err == nil,
		Err:         err,
		Duration:    time.Since(start),
	})

	if err != nil {
		return result, e.fail(err)
	}
	return result, nil
}

// splitArgs separates call-time arguments into the expected
// value and the explicit message. A missing expected value is
// Undefined and a missing message is empty.
func splitArgs(arity Arity, args []any) (expected any, message string, err error) {
	expected = introspect.Undefined
	rest := args
	if arity == TwoArg && len(rest) > 0 {
		expected, rest = rest[0], rest[1:]
	}

	switch len(rest) {
	case 0:
	case 1:
		s, ok := rest[0].(string)
		if !ok {
			return nil, "", fmt.Errorf("%w: message must be a string, got %T", ErrBadArguments, rest[0])
		}
		message = s
	default:
		return nil, "", fmt.Errorf("%w: %s check takes at most %d arguments, got %d",
			ErrBadArguments, arity, int(arity), len(args))
	}
	return expected, message, nil
}

// defaultMessage builds "asserting <value>, that (<description>),
// being <phrase>", dropping the parts the check or handler does
// not supply.
func defaultMessage(check Check, value any, description string) string {
	words := []string{"asserting"}
	if !check.HideValue {
		words = append(words, introspect.Render(value, check.PrintDetails))
	}
	if description != "" {
		if len(words) > 1 {
			words[len(words)-1] += ","
		}
		words = append(words, "that ("+description+"), being")
	}
	words = append(words, introspect.Phrase(check.Name))
	return strings.Join(words, " ")
}

func (e *Engine) notify(o Outcome) {
	fields := []logging.Field{
		logging.CheckField(o.Check),
		logging.BoolField("passed", o.Passed),
		logging.DurationField("duration", o.Duration),
	}
	if o.Description != "" {
		fields = append(fields, logging.StringField("description", o.Description))
	}
	if o.Err != nil {
		fields = append(fields, logging.ErrorField(o.Err))
	}
	e.logger.Debug("check dispatched", fields...)

	for _, obs := range e.observers {
		obs.ObserveCheck(o)
	}
}

func (e *Engine) fail(err error) error {
	if e.onFailure != nil {
		e.onFailure(err)
	}
	return err
}
