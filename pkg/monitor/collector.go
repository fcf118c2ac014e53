package monitor

import (
	"sync"
	"time"

	"digital.vasic.pavlov/pkg/assertion"
)

// EventCollector records events and fans them out to handlers.
// It is an assertion.Observer, so attaching it to an engine
// feeds every dispatched check into the monitor.
type EventCollector struct {
	mu       sync.RWMutex
	events   []CheckEvent
	handlers []func(CheckEvent)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Checks       int           `json:"checks"`
	ChecksPassed int           `json:"checks_passed"`
	ChecksFailed int           `json:"checks_failed"`
	Plans        int           `json:"plans"`
	PlansFailed  int           `json:"plans_failed"`
	StartTime    time.Time     `json:"start_time"`
	Duration     time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]CheckEvent, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(CheckEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers outside the
// lock.
func (c *EventCollector) Emit(event CheckEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	switch event.Type {
	case EventCheckPassed:
		c.stats.Checks++
		c.stats.ChecksPassed++
	case EventCheckFailed:
		c.stats.Checks++
		c.stats.ChecksFailed++
	case EventPlanCompleted:
		c.stats.Plans++
	case EventPlanFailed:
		c.stats.Plans++
		c.stats.PlansFailed++
	}
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(CheckEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// ObserveCheck turns an engine outcome into a check event.
func (c *EventCollector) ObserveCheck(o assertion.Outcome) {
	event := CheckEvent{
		Type:        EventCheckPassed,
		Check:       o.Check,
		Description: o.Description,
		Message:     o.Message,
		Passed:      o.Passed,
		Duration:    o.Duration,
	}
	if !o.Passed {
		event.Type = EventCheckFailed
		if o.Err != nil {
			event.Message = o.Err.Error()
		}
	}
	c.Emit(event)
}

// EmitPlanStarted emits a plan started event.
func (c *EventCollector) EmitPlanStarted(plan string, steps int) {
	c.Emit(CheckEvent{
		Type:  EventPlanStarted,
		Plan:  plan,
		Steps: steps,
	})
}

// EmitPlanFinished emits a plan completed or failed event,
// depending on failures.
func (c *EventCollector) EmitPlanFinished(plan string, steps, failures int, duration time.Duration) {
	event := CheckEvent{
		Type:     EventPlanCompleted,
		Plan:     plan,
		Passed:   failures == 0,
		Steps:    steps,
		Failures: failures,
		Duration: duration,
	}
	if failures > 0 {
		event.Type = EventPlanFailed
	}
	c.Emit(event)
}

// EmitRunFinished marks the end of a run.
func (c *EventCollector) EmitRunFinished(passed bool, duration time.Duration) {
	c.Emit(CheckEvent{
		Type:     EventRunFinished,
		Passed:   passed,
		Duration: duration,
	})
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []CheckEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]CheckEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
