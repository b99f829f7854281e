package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.convergence/pkg/condition"
	"digital.vasic.convergence/pkg/convergence"
	"digital.vasic.convergence/pkg/convergence/convergencetest"
)

func pass() condition.Assertion {
	return condition.AssertionFunc(func() error { return nil })
}

func fail(msg string) condition.Assertion {
	return condition.AssertionFunc(func() error { return errors.New(msg) })
}

func runWith(
	t *testing.T,
	c *EventCollector,
	steps ...convergence.Step,
) error {
	t.Helper()
	r := convergence.NewRunner(
		convergence.WithClock(convergencetest.NewVirtualClock()),
		convergence.WithObserver(c),
	)
	return r.Run(context.Background(), "Button(.save)", convergence.NewChain(steps...))
}

func TestEventCollector_Emit(t *testing.T) {
	c := NewEventCollector()

	var received []Event
	var mu sync.Mutex
	c.OnEvent(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	c.Emit(Event{Type: EventRunStarted, RunID: "run-1", Name: "Test"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, EventRunStarted, received[0].Type)
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestEventCollector_ObservesPassingRun(t *testing.T) {
	c := NewEventCollector()

	err := runWith(t, c,
		convergence.Step{Policy: convergence.Eventually, Assertion: pass(), Label: "isLoading"},
		convergence.Step{Policy: convergence.Always, Assertion: pass(), Timeout: 30 * time.Millisecond, Label: "!isLoading"},
	)
	require.NoError(t, err)

	var types []EventType
	for _, e := range c.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{
		EventRunStarted,
		EventStepStarted, EventStepPassed,
		EventStepStarted, EventStepPassed,
		EventRunPassed,
	}, types)

	events := c.Events()
	assert.Equal(t, "always", events[3].Policy)
	assert.Equal(t, "!isLoading", events[3].Label)
	assert.Equal(t, 1, events[3].Step)
	assert.Equal(t, 4, events[4].Attempts)
	assert.Equal(t, events[0].RunID, events[5].RunID)
	assert.Equal(t, "Button(.save)", events[5].Name)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 1, stats.RunsPassed)
	assert.Equal(t, 2, stats.Steps)
	assert.Equal(t, 2, stats.StepsPassed)
	assert.Equal(t, 5, stats.Attempts)
}

func TestEventCollector_StampsWallTime(t *testing.T) {
	c := NewEventCollector()
	before := time.Now()

	require.NoError(t, runWith(t, c,
		convergence.Step{Policy: convergence.Always, Assertion: pass(), Timeout: 30 * time.Millisecond},
	))
	after := time.Now()

	for _, e := range c.Events() {
		assert.False(t, e.Timestamp.Before(before), e.Type)
		assert.False(t, e.Timestamp.After(after), e.Type)
	}

	snap := Replay(c).Snapshot()
	require.Len(t, snap.Runs, 1)
	for _, run := range snap.Runs {
		assert.False(t, run.StartTime.Before(before))
		assert.NotEqual(t, convergencetest.Epoch, run.StartTime)
	}
}

func TestEventCollector_ObservesFailures(t *testing.T) {
	c := NewEventCollector()

	err := runWith(t, c, convergence.Step{
		Policy:    convergence.Eventually,
		Assertion: fail("isLoading returned false"),
		Timeout:   20 * time.Millisecond,
	})
	require.Error(t, err)

	err = runWith(t, c, convergence.Step{
		Policy:    convergence.Always,
		Assertion: fail("isLoading returned true"),
		Timeout:   20 * time.Millisecond,
	})
	require.Error(t, err)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Runs)
	assert.Equal(t, 2, stats.RunsFailed)
	assert.Equal(t, 1, stats.StepsTimedOut)
	assert.Equal(t, 1, stats.StepsFailed)

	events := c.Events()
	require.Len(t, events, 8)
	assert.Equal(t, EventStepTimedOut, events[2].Type)
	assert.Equal(t, "isLoading returned false", events[2].Message)
	assert.Equal(t, EventRunFailed, events[7].Type)
	assert.Equal(t, "isLoading returned true", events[7].Message)
}

func TestEventCollector_Reset(t *testing.T) {
	c := NewEventCollector()
	require.NoError(t, runWith(t, c))
	c.Reset()

	assert.Empty(t, c.Events())
	assert.Equal(t, 0, c.Stats().Runs)
}

func TestEventCollector_ConcurrentAccess(t *testing.T) {
	c := NewEventCollector()
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Emit(Event{Type: EventRunStarted, RunID: "run"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, c.Stats().Runs)
}

func TestEventCollector_Subscribe(t *testing.T) {
	c := NewEventCollector()
	c.Emit(Event{Type: EventRunStarted, RunID: "before"})

	var replayed []string
	var handled []string
	c.Subscribe(func(past []Event) {
		for _, e := range past {
			replayed = append(replayed, e.RunID)
		}
	}, func(e Event) {
		handled = append(handled, e.RunID)
	})
	c.Emit(Event{Type: EventRunStarted, RunID: "after"})

	assert.Equal(t, []string{"before"}, replayed)
	assert.Equal(t, []string{"after"}, handled)
}

func TestEventCollector_SubscribeWhileEmitting(t *testing.T) {
	const total = 200
	c := NewEventCollector()

	var mu sync.Mutex
	seen := make(map[string]int)
	record := func(id string) {
		mu.Lock()
		defer mu.Unlock()
		seen[id]++
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := range total {
			c.Emit(Event{Type: EventRunStarted, RunID: fmt.Sprintf("run-%d", n)})
		}
	}()

	c.Subscribe(func(past []Event) {
		for _, e := range past {
			record(e.RunID)
		}
	}, func(e Event) {
		record(e.RunID)
	})
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, total)
	for id, count := range seen {
		assert.Equal(t, 1, count, id)
	}
}

func TestDashboard_TracksRuns(t *testing.T) {
	c := NewEventCollector()
	d := NewDashboard()
	c.OnEvent(d.Update)

	require.NoError(t, runWith(t, c,
		convergence.Step{Policy: convergence.Eventually, Assertion: pass(), Label: "isLoading"},
	))
	require.Error(t, runWith(t, c,
		convergence.Step{Policy: convergence.Always, Assertion: fail("boom"), Label: "!isLoading"},
	))

	snap := d.Snapshot()
	assert.Equal(t, 2, snap.Summary.Total)
	assert.Equal(t, 1, snap.Summary.Passed)
	assert.Equal(t, 1, snap.Summary.Failed)
	assert.Equal(t, float64(50), snap.Summary.PassRate)

	var failed RunState
	for _, run := range snap.Runs {
		if run.Status == StatusFailed {
			failed = run
		}
	}
	assert.Equal(t, "boom", failed.Message)
	assert.Equal(t, "!isLoading", failed.Label)
	assert.Equal(t, "always", failed.Policy)
	assert.Equal(t, 1, failed.Attempts)

	replayed := Replay(c).Snapshot()
	assert.Equal(t, snap.Summary.Total, replayed.Summary.Total)
	assert.Equal(t, snap.Runs, replayed.Runs)
}

func TestDashboard_RunningRun(t *testing.T) {
	d := NewDashboard()
	d.Update(Event{Type: EventRunStarted, RunID: "run-1", Name: "Button"})
	d.Update(Event{Type: EventStepStarted, RunID: "run-1", Step: 2, Label: "isLoading"})

	snap := d.Snapshot()
	assert.Equal(t, 1, snap.Summary.Running)
	assert.Equal(t, float64(0), snap.Summary.PassRate)
	assert.Equal(t, 2, snap.Runs["run-1"].Step)
	assert.Equal(t, StatusRunning, snap.Runs["run-1"].Status)
}
