package report

import (
	"time"

	"digital.vasic.convergence/pkg/monitor"
)

// Step statuses as recorded in reports.
const (
	StatusPassed   = "passed"
	StatusFailed   = "failed"
	StatusTimedOut = "timed_out"
	StatusRunning  = "running"
)

// RunRecord is the outcome of one chain run.
type RunRecord struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
	Steps    []StepRecord  `json:"steps"`
}

// StepRecord is the outcome of one step within a run.
type StepRecord struct {
	Index    int           `json:"index"`
	Policy   string        `json:"policy"`
	Label    string        `json:"label"`
	Status   string        `json:"status"`
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed"`
	Message  string        `json:"message,omitempty"`
}

// BuildRunRecords groups events by run, in the order runs
// started. Runs without a finish event stay "running".
func BuildRunRecords(events []monitor.Event) []*RunRecord {
	var runs []*RunRecord
	byID := make(map[string]*RunRecord)

	for _, e := range events {
		run, ok := byID[e.RunID]
		if !ok {
			run = &RunRecord{
				ID:     e.RunID,
				Name:   e.Name,
				Status: StatusRunning,
			}
			byID[e.RunID] = run
			runs = append(runs, run)
		}

		switch e.Type {
		case monitor.EventStepStarted:
			run.Steps = append(run.Steps, StepRecord{
				Index:  e.Step,
				Policy: e.Policy,
				Label:  e.Label,
				Status: StatusRunning,
			})
		case monitor.EventStepPassed, monitor.EventStepFailed, monitor.EventStepTimedOut:
			if len(run.Steps) == 0 {
				continue
			}
			step := &run.Steps[len(run.Steps)-1]
			step.Status = stepStatus(e.Type)
			step.Attempts = e.Attempts
			step.Elapsed = e.Duration
			step.Message = e.Message
		case monitor.EventRunPassed:
			run.Status = StatusPassed
			run.Duration = e.Duration
		case monitor.EventRunFailed:
			run.Status = StatusFailed
			run.Duration = e.Duration
			run.Message = e.Message
		}
	}

	return runs
}

func stepStatus(t monitor.EventType) string {
	switch t {
	case monitor.EventStepPassed:
		return StatusPassed
	case monitor.EventStepTimedOut:
		return StatusTimedOut
	default:
		return StatusFailed
	}
}
