// Package metrics records check and plan outcomes.
package metrics

import (
	"time"

	"digital.vasic.pavlov/pkg/assertion"
)

// CheckMetrics defines the interface for recording check metrics.
type CheckMetrics interface {
	// RecordCheck records one check invocation.
	RecordCheck(check string, passed bool, duration time.Duration)
	// RecordPlan records a finished plan.
	RecordPlan(plan string, passed bool, duration time.Duration)
	// IncrementRunTotal increments the total run counter.
	IncrementRunTotal()
	// SetActivePlans sets the gauge of plans currently running.
	SetActivePlans(count int)
}

// NoopMetrics is a no-op implementation of CheckMetrics useful
// for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordCheck(_ string, _ bool, _ time.Duration) {}
func (NoopMetrics) RecordPlan(_ string, _ bool, _ time.Duration)  {}
func (NoopMetrics) IncrementRunTotal()                            {}
func (NoopMetrics) SetActivePlans(_ int)                          {}

// Observer adapts m to an engine observer so every dispatched
// check is recorded.
func Observer(m CheckMetrics) assertion.Observer {
	return assertion.ObserverFunc(func(o assertion.Outcome) {
		m.RecordCheck(o.Check, o.Passed, o.Duration)
	})
}
