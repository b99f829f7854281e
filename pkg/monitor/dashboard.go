package monitor

import (
	"sync"
	"time"
)

// Run statuses shown on the dashboard.
const (
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
)

// Dashboard keeps the live state of every run it has seen.
type Dashboard struct {
	mu        sync.RWMutex
	startTime time.Time
	runs      map[string]RunState
}

// RunState is the dashboard view of one run.
type RunState struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	Step      int           `json:"step"`
	Label     string        `json:"label,omitempty"`
	Policy    string        `json:"policy,omitempty"`
	Attempts  int           `json:"attempts"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Summary holds aggregate run counts.
type Summary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Running  int     `json:"running"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed"`
}

// Snapshot is a point-in-time copy of a Dashboard.
type Snapshot struct {
	StartTime time.Time           `json:"start_time"`
	Runs      map[string]RunState `json:"runs"`
	Summary   Summary             `json:"summary"`
}

// NewDashboard creates an empty dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{
		startTime: time.Now(),
		runs:      make(map[string]RunState),
	}
}

// Update applies an event to the run it belongs to.
func (d *Dashboard) Update(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, ok := d.runs[event.RunID]
	if !ok {
		state = RunState{
			ID:        event.RunID,
			Name:      event.Name,
			Status:    StatusRunning,
			StartTime: event.Timestamp,
		}
	}

	switch event.Type {
	case EventStepStarted:
		state.Step = event.Step
		state.Label = event.Label
		state.Policy = event.Policy
	case EventStepPassed, EventStepFailed, EventStepTimedOut:
		state.Attempts += event.Attempts
	case EventRunPassed:
		state.Status = StatusPassed
		state.Duration = event.Duration
	case EventRunFailed:
		state.Status = StatusFailed
		state.Duration = event.Duration
		state.Message = event.Message
	}

	d.runs[event.RunID] = state
}

// Snapshot returns a copy of the current state with a fresh
// summary.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := Snapshot{
		StartTime: d.startTime,
		Runs:      make(map[string]RunState, len(d.runs)),
	}
	for id, run := range d.runs {
		snap.Runs[id] = run
		snap.Summary.Total++
		switch run.Status {
		case StatusPassed:
			snap.Summary.Passed++
		case StatusFailed:
			snap.Summary.Failed++
		default:
			snap.Summary.Running++
		}
	}
	if done := snap.Summary.Passed + snap.Summary.Failed; done > 0 {
		snap.Summary.PassRate = float64(snap.Summary.Passed) / float64(done) * 100
	}
	snap.Summary.Elapsed = time.Since(d.startTime).Round(time.Millisecond).String()
	return snap
}

// Replay builds a dashboard from the events already collected.
func Replay(collector *EventCollector) *Dashboard {
	d := NewDashboard()
	for _, event := range collector.Events() {
		d.Update(event)
	}
	return d
}
