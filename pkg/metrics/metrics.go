// Package metrics records convergence step and run outcomes.
package metrics

import "time"

// Outcome labels shared by every implementation.
const (
	OutcomePassed    = "passed"
	OutcomeFailed    = "failed"
	OutcomeTimedOut  = "timed_out"
	OutcomeCancelled = "cancelled"
)

// ConvergenceMetrics defines the interface for recording
// convergence metrics.
type ConvergenceMetrics interface {
	// RecordStep records one finished step: its policy name,
	// outcome, number of assertion checks, and elapsed time.
	RecordStep(policy, outcome string, attempts int, elapsed time.Duration)
	// RecordRun records one finished chain run.
	RecordRun(outcome string, steps int, elapsed time.Duration)
	// IncActiveRuns marks one more run in progress.
	IncActiveRuns()
	// DecActiveRuns marks one run in progress as finished.
	DecActiveRuns()
}

// NoopMetrics is a no-op implementation of ConvergenceMetrics
// useful for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordStep(_, _ string, _ int, _ time.Duration) {}
func (NoopMetrics) RecordRun(_ string, _ int, _ time.Duration)     {}
func (NoopMetrics) IncActiveRuns()                                 {}
func (NoopMetrics) DecActiveRuns()                                 {}
