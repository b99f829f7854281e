package monitor

import (
	"errors"
	"sync"
	"time"

	"digital.vasic.convergence/pkg/convergence"
)

// EventCollector records run and step events. It implements
// convergence.Observer, so it can be attached to a Runner with
// convergence.WithObserver.
type EventCollector struct {
	mu       sync.RWMutex
	events   []Event
	handlers []func(Event)
	stats    CollectorStats
}

var _ convergence.Observer = (*EventCollector)(nil)

// CollectorStats holds aggregate counts.
type CollectorStats struct {
	Runs          int           `json:"runs"`
	RunsPassed    int           `json:"runs_passed"`
	RunsFailed    int           `json:"runs_failed"`
	Steps         int           `json:"steps"`
	StepsPassed   int           `json:"steps_passed"`
	StepsFailed   int           `json:"steps_failed"`
	StepsTimedOut int           `json:"steps_timed_out"`
	Attempts      int           `json:"attempts"`
	StartTime     time.Time     `json:"start_time"`
	Duration      time.Duration `json:"duration"`
}

// NewEventCollector creates an empty collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]Event, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler called after each event is
// recorded.
func (c *EventCollector) OnEvent(handler func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Subscribe passes the events recorded so far to replay and
// registers handler for every later event. Both happen under one
// lock, so each event reaches exactly one of the two.
func (c *EventCollector) Subscribe(replay func([]Event), handler func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	past := make([]Event, len(c.events))
	copy(past, c.events)
	replay(past)
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.count(event)
	handlers := make([]func(Event), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

func (c *EventCollector) count(event Event) {
	switch event.Type {
	case EventRunStarted:
		c.stats.Runs++
	case EventRunPassed:
		c.stats.RunsPassed++
	case EventRunFailed:
		c.stats.RunsFailed++
	case EventStepStarted:
		c.stats.Steps++
	case EventStepPassed:
		c.stats.StepsPassed++
	case EventStepFailed:
		c.stats.StepsFailed++
	case EventStepTimedOut:
		c.stats.StepsTimedOut++
	}
	c.stats.Attempts += event.Attempts
}

// RunStarted implements convergence.Observer.
func (c *EventCollector) RunStarted(run convergence.RunInfo) {
	c.Emit(Event{
		Type:  EventRunStarted,
		RunID: run.ID,
		Name:  run.Name,
	})
}

// StepStarted implements convergence.Observer.
func (c *EventCollector) StepStarted(
	run convergence.RunInfo,
	index int,
	step convergence.Step,
) {
	c.Emit(Event{
		Type:   EventStepStarted,
		RunID:  run.ID,
		Name:   run.Name,
		Step:   index,
		Policy: step.Policy.String(),
		Label:  step.Label,
	})
}

// StepFinished implements convergence.Observer.
func (c *EventCollector) StepFinished(
	run convergence.RunInfo,
	index int,
	step convergence.Step,
	report convergence.Report,
	err error,
) {
	event := Event{
		Type:     EventStepPassed,
		RunID:    run.ID,
		Name:     run.Name,
		Step:     index,
		Policy:   step.Policy.String(),
		Label:    step.Label,
		Attempts: report.Attempts,
		Duration: report.Elapsed,
	}
	if err != nil {
		event.Type = EventStepFailed
		if errors.Is(err, convergence.ErrTimeout) {
			event.Type = EventStepTimedOut
		}
		event.Message = err.Error()
	}
	c.Emit(event)
}

// RunFinished implements convergence.Observer.
func (c *EventCollector) RunFinished(
	run convergence.RunInfo,
	elapsed time.Duration,
	err error,
) {
	event := Event{
		Type:     EventRunPassed,
		RunID:    run.ID,
		Name:     run.Name,
		Duration: elapsed,
	}
	if err != nil {
		event.Type = EventRunFailed
		event.Message = err.Error()
	}
	c.Emit(event)
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Event, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate counts.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics. Handlers
// stay registered.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
