// Package monitor streams check and plan outcomes to live
// dashboards over a websocket.
package monitor

import "time"

// EventType represents the type of monitor event.
type EventType string

const (
	EventCheckPassed   EventType = "check_passed"
	EventCheckFailed   EventType = "check_failed"
	EventPlanStarted   EventType = "plan_started"
	EventPlanCompleted EventType = "plan_completed"
	EventPlanFailed    EventType = "plan_failed"
	EventRunFinished   EventType = "run_finished"
)

// CheckEvent is one entry of the live feed. Check events carry
// the check name and message; plan events carry the plan name
// and step counts.
type CheckEvent struct {
	Type        EventType     `json:"type"`
	Check       string        `json:"check,omitempty"`
	Plan        string        `json:"plan,omitempty"`
	Description string        `json:"description,omitempty"`
	Message     string        `json:"message,omitempty"`
	Passed      bool          `json:"passed"`
	Steps       int           `json:"steps,omitempty"`
	Failures    int           `json:"failures,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

// IsCheck reports whether e describes a single check.
func (e CheckEvent) IsCheck() bool {
	return e.Type == EventCheckPassed || e.Type == EventCheckFailed
}
