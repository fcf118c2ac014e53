package monitor

import (
	"sync"
	"time"
)

// Dashboard keeps a live view of a run, fed by events.
type Dashboard struct {
	mu   sync.RWMutex
	snap Snapshot
}

// Snapshot is a point-in-time copy of the dashboard.
type Snapshot struct {
	RunID     string                `json:"run_id"`
	StartTime time.Time             `json:"start_time"`
	Status    string                `json:"status"` // running, passed, failed
	Plans     map[string]PlanState  `json:"plans"`
	Checks    map[string]CheckStats `json:"checks"`
	Summary   DashboardSummary      `json:"summary"`
}

// PlanState is the current state of one plan.
type PlanState struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Steps    int           `json:"steps"`
	Failures int           `json:"failures"`
	Duration time.Duration `json:"duration,omitempty"`
}

// CheckStats counts invocations of one check.
type CheckStats struct {
	Passed      int    `json:"passed"`
	Failed      int    `json:"failed"`
	LastMessage string `json:"last_message,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Plans        int     `json:"plans"`
	PlansRunning int     `json:"plans_running"`
	PlansFailed  int     `json:"plans_failed"`
	Checks       int     `json:"checks"`
	ChecksFailed int     `json:"checks_failed"`
	PassRate     float64 `json:"pass_rate"`
	Elapsed      string  `json:"elapsed"`
}

// NewDashboard creates a dashboard for runID.
func NewDashboard(runID string) *Dashboard {
	return &Dashboard{snap: Snapshot{
		RunID:     runID,
		StartTime: time.Now(),
		Status:    "running",
		Plans:     make(map[string]PlanState),
		Checks:    make(map[string]CheckStats),
	}}
}

// UpdateFromEvent folds event into the dashboard.
func (d *Dashboard) UpdateFromEvent(event CheckEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch event.Type {
	case EventCheckPassed, EventCheckFailed:
		stats := d.snap.Checks[event.Check]
		if event.Passed {
			stats.Passed++
		} else {
			stats.Failed++
			stats.LastMessage = event.Message
		}
		d.snap.Checks[event.Check] = stats
	case EventPlanStarted:
		d.snap.Plans[event.Plan] = PlanState{
			Name:   event.Plan,
			Status: "running",
			Steps:  event.Steps,
		}
	case EventPlanCompleted, EventPlanFailed:
		status := "passed"
		if event.Type == EventPlanFailed {
			status = "failed"
		}
		d.snap.Plans[event.Plan] = PlanState{
			Name:     event.Plan,
			Status:   status,
			Steps:    event.Steps,
			Failures: event.Failures,
			Duration: event.Duration,
		}
	case EventRunFinished:
		d.snap.Status = "passed"
		if !event.Passed {
			d.snap.Status = "failed"
		}
	}

	d.recalcSummary()
}

func (d *Dashboard) recalcSummary() {
	s := DashboardSummary{}
	for _, p := range d.snap.Plans {
		s.Plans++
		switch p.Status {
		case "running":
			s.PlansRunning++
		case "failed":
			s.PlansFailed++
		}
	}
	passed := 0
	for _, c := range d.snap.Checks {
		s.Checks += c.Passed + c.Failed
		s.ChecksFailed += c.Failed
		passed += c.Passed
	}
	if s.Checks > 0 {
		s.PassRate = float64(passed) / float64(s.Checks) * 100
	}
	s.Elapsed = time.Since(d.snap.StartTime).Round(time.Millisecond).String()
	d.snap.Summary = s
}

// Snapshot returns a copy of the current dashboard state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := d.snap
	snap.Plans = make(map[string]PlanState, len(d.snap.Plans))
	for k, v := range d.snap.Plans {
		snap.Plans[k] = v
	}
	snap.Checks = make(map[string]CheckStats, len(d.snap.Checks))
	for k, v := range d.snap.Checks {
		snap.Checks[k] = v
	}
	return snap
}

// SetStatus sets the overall run status.
func (d *Dashboard) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap.Status = status
}

// BuildDashboard replays every event collected so far into a
// new dashboard.
func BuildDashboard(runID string, collector *EventCollector) *Dashboard {
	d := NewDashboard(runID)
	for _, event := range collector.Events() {
		d.UpdateFromEvent(event)
	}
	return d
}
