package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.pavlov/pkg/assertion"
)

func TestEventCollector_Emit(t *testing.T) {
	c := NewEventCollector()

	c.Emit(CheckEvent{Type: EventCheckPassed, Check: "isArray", Passed: true})
	c.Emit(CheckEvent{Type: EventCheckFailed, Check: "isString"})
	c.EmitPlanFinished("orders", 2, 1, time.Second)

	events := c.Events()
	require.Len(t, events, 3)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.True(t, events[0].IsCheck())
	assert.False(t, events[2].IsCheck())
	assert.Equal(t, EventPlanFailed, events[2].Type)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Checks)
	assert.Equal(t, 1, stats.ChecksPassed)
	assert.Equal(t, 1, stats.ChecksFailed)
	assert.Equal(t, 1, stats.Plans)
	assert.Equal(t, 1, stats.PlansFailed)
}

func TestEventCollector_OnEvent(t *testing.T) {
	c := NewEventCollector()
	var got []EventType
	c.OnEvent(func(e CheckEvent) { got = append(got, e.Type) })

	c.EmitPlanStarted("p", 3)
	c.EmitPlanFinished("p", 3, 0, time.Millisecond)
	c.EmitRunFinished(true, time.Second)

	assert.Equal(t, []EventType{EventPlanStarted, EventPlanCompleted, EventRunFinished}, got)
}

func TestEventCollector_ObservesEngine(t *testing.T) {
	c := NewEventCollector()
	e := assertion.NewEngine(assertion.WithObserver(c))

	require.NoError(t, e.That([]int{}, "items").IsArray())
	require.Error(t, e.That(5).IsEqualTo(6))

	events := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventCheckPassed, events[0].Type)
	assert.Equal(t, "isArray", events[0].Check)
	assert.Equal(t, "items", events[0].Description)
	assert.Equal(t, EventCheckFailed, events[1].Type)
	assert.Equal(t, "asserting 5 is equal to 6", events[1].Message)
}

func TestEventCollector_ObserveCheck_UsesErrorText(t *testing.T) {
	c := NewEventCollector()
	c.ObserveCheck(assertion.Outcome{
		Check:   "custom",
		Message: "built",
		Err:     errors.New("from check"),
	})

	assert.Equal(t, "from check", c.Events()[0].Message)
}

func TestEventCollector_Reset(t *testing.T) {
	c := NewEventCollector()
	c.Emit(CheckEvent{Type: EventCheckPassed})
	c.Reset()

	assert.Empty(t, c.Events())
	assert.Zero(t, c.Stats().Checks)
}

func TestEventCollector_Concurrent(t *testing.T) {
	c := NewEventCollector()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Emit(CheckEvent{Type: EventCheckPassed, Check: "pass", Passed: true})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, c.Events(), 100)
	assert.Equal(t, 100, c.Stats().ChecksPassed)
}

func TestDashboard_UpdateFromEvent(t *testing.T) {
	d := NewDashboard("run-1")

	d.UpdateFromEvent(CheckEvent{Type: EventPlanStarted, Plan: "orders", Steps: 2})
	snap := d.Snapshot()
	assert.Equal(t, "running", snap.Plans["orders"].Status)
	assert.Equal(t, 1, snap.Summary.PlansRunning)

	d.UpdateFromEvent(CheckEvent{Type: EventCheckPassed, Check: "isArray", Passed: true})
	d.UpdateFromEvent(CheckEvent{Type: EventCheckFailed, Check: "isArray", Message: "boom"})
	d.UpdateFromEvent(CheckEvent{Type: EventPlanFailed, Plan: "orders", Steps: 2, Failures: 1})
	d.UpdateFromEvent(CheckEvent{Type: EventRunFinished, Passed: false})

	snap = d.Snapshot()
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, "failed", snap.Status)
	assert.Equal(t, PlanState{Name: "orders", Status: "failed", Steps: 2, Failures: 1}, snap.Plans["orders"])
	assert.Equal(t, CheckStats{Passed: 1, Failed: 1, LastMessage: "boom"}, snap.Checks["isArray"])
	assert.Equal(t, 2, snap.Summary.Checks)
	assert.Equal(t, 1, snap.Summary.ChecksFailed)
	assert.Equal(t, 1, snap.Summary.PlansFailed)
	assert.InDelta(t, 50.0, snap.Summary.PassRate, 1e-9)
	assert.NotEmpty(t, snap.Summary.Elapsed)
}

func TestDashboard_SnapshotIsCopy(t *testing.T) {
	d := NewDashboard("run")
	d.UpdateFromEvent(CheckEvent{Type: EventPlanStarted, Plan: "a"})

	snap := d.Snapshot()
	snap.Plans["b"] = PlanState{}
	snap.Checks["x"] = CheckStats{}

	again := d.Snapshot()
	assert.Len(t, again.Plans, 1)
	assert.Empty(t, again.Checks)
}

func TestDashboard_SetStatus(t *testing.T) {
	d := NewDashboard("run")
	d.SetStatus("passed")
	assert.Equal(t, "passed", d.Snapshot().Status)
}

func TestBuildDashboard(t *testing.T) {
	c := NewEventCollector()
	c.EmitPlanStarted("a", 1)
	c.ObserveCheck(assertion.Outcome{Check: "pass", Passed: true})
	c.EmitPlanFinished("a", 1, 0, time.Millisecond)

	snap := BuildDashboard("replay", c).Snapshot()

	assert.Equal(t, "replay", snap.RunID)
	assert.Equal(t, "passed", snap.Plans["a"].Status)
	assert.Equal(t, 1, snap.Checks["pass"].Passed)
}
