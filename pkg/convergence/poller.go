package convergence

import (
	"context"
	"fmt"
	"time"
)

// DefaultInterval is the pause between assertion checks.
const DefaultInterval = 10 * time.Millisecond

// Report summarizes how a step was polled.
type Report struct {
	// Attempts is the number of assertion checks made.
	Attempts int

	// Elapsed is the clock time from the first check to the
	// last.
	Elapsed time.Duration
}

// Poller converges a single step.
type Poller interface {
	Poll(ctx context.Context, step Step) (Report, error)
}

// DefaultPoller polls on a fixed interval against a Clock. It
// never checks two assertions at once and sleeps only between
// checks.
type DefaultPoller struct {
	clock    Clock
	interval time.Duration
}

// NewPoller creates a DefaultPoller. A nil clock uses the system
// clock and a non-positive interval uses DefaultInterval.
func NewPoller(clock Clock, interval time.Duration) *DefaultPoller {
	if clock == nil {
		clock = SystemClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &DefaultPoller{clock: clock, interval: interval}
}

// Poll converges step according to its policy.
func (p *DefaultPoller) Poll(
	ctx context.Context,
	step Step,
) (Report, error) {
	if step.Assertion == nil {
		return Report{}, ErrNilAssertion
	}

	switch step.Policy {
	case Eventually:
		return p.eventually(ctx, step)
	case Always:
		return p.always(ctx, step)
	default:
		return Report{}, fmt.Errorf(
			"%w: %s", ErrUnknownPolicy, step.Policy,
		)
	}
}

// eventually checks until the assertion passes. The last check
// lands on the deadline, and a timeout carries the last failure.
func (p *DefaultPoller) eventually(
	ctx context.Context,
	step Step,
) (Report, error) {
	var report Report
	start := p.clock.Now()

	for {
		if err := ctx.Err(); err != nil {
			return report, cancelled(err)
		}

		report.Attempts++
		err := step.Assertion.Check()
		report.Elapsed = p.clock.Now().Sub(start)
		if err == nil {
			return report, nil
		}

		if report.Elapsed >= step.Timeout {
			return report, &TimeoutError{
				Timeout: step.Timeout,
				Last:    err,
			}
		}

		if err := p.wait(ctx, step.Timeout-report.Elapsed); err != nil {
			return report, err
		}
	}
}

// always checks until the duration is covered. The first failing
// check ends the step with that failure, unchanged. A duration of
// zero or less checks exactly once.
func (p *DefaultPoller) always(
	ctx context.Context,
	step Step,
) (Report, error) {
	var report Report
	start := p.clock.Now()

	for {
		if err := ctx.Err(); err != nil {
			return report, cancelled(err)
		}

		report.Attempts++
		err := step.Assertion.Check()
		report.Elapsed = p.clock.Now().Sub(start)
		if err != nil {
			return report, err
		}

		if report.Elapsed >= step.Timeout {
			return report, nil
		}

		if err := p.wait(ctx, step.Timeout-report.Elapsed); err != nil {
			return report, err
		}
	}
}

// wait sleeps for one interval, or less when remaining is
// shorter.
func (p *DefaultPoller) wait(
	ctx context.Context,
	remaining time.Duration,
) error {
	d := min(p.interval, remaining)

	select {
	case <-ctx.Done():
		return cancelled(ctx.Err())
	case <-p.clock.After(d):
		return nil
	}
}

func cancelled(err error) error {
	return fmt.Errorf("convergence cancelled: %w", err)
}
