package monitor

import "time"

// EventType names a run or step lifecycle transition.
type EventType string

const (
	EventRunStarted   EventType = "run_started"
	EventRunPassed    EventType = "run_passed"
	EventRunFailed    EventType = "run_failed"
	EventStepStarted  EventType = "step_started"
	EventStepPassed   EventType = "step_passed"
	EventStepFailed   EventType = "step_failed"
	EventStepTimedOut EventType = "step_timed_out"
)

// Event is one lifecycle transition of a convergence run.
// Timestamp is wall-clock time, even when the runner polls on a
// virtual clock.
type Event struct {
	Type      EventType     `json:"type"`
	RunID     string        `json:"run_id"`
	Name      string        `json:"name"`
	Step      int           `json:"step,omitempty"`
	Policy    string        `json:"policy,omitempty"`
	Label     string        `json:"label,omitempty"`
	Attempts  int           `json:"attempts,omitempty"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
