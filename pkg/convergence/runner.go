package convergence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"digital.vasic.convergence/pkg/logging"
	"digital.vasic.convergence/pkg/metrics"
)

// tracerName is the instrumentation scope for runner spans.
const tracerName = "digital.vasic.convergence"

// Runner executes chains step by step. A Runner holds no
// per-run state and is safe to share between goroutines running
// different chains.
type Runner struct {
	poller    Poller
	clock     Clock
	interval  time.Duration
	logger    logging.Logger
	metrics   metrics.ConvergenceMetrics
	observers []Observer
	tracer    trace.Tracer
}

// NewRunner creates a Runner. Without options it polls every
// DefaultInterval on the system clock and discards logs and
// metrics.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		clock:    SystemClock(),
		interval: DefaultInterval,
		logger:   logging.NullLogger{},
		metrics:  metrics.NoopMetrics{},
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.poller == nil {
		r.poller = NewPoller(r.clock, r.interval)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}

	return r
}

// Run executes the steps of chain in order and returns the first
// failure. A later step never starts before an earlier one has
// passed. Step failures are returned unwrapped so their messages
// reach the caller as the assertion produced them.
func (r *Runner) Run(
	ctx context.Context,
	name string,
	chain Chain,
) error {
	run := RunInfo{
		ID:      uuid.NewString(),
		Name:    name,
		Steps:   chain.Len(),
		Started: r.clock.Now(),
	}

	ctx, span := r.tracer.Start(ctx, "convergence.run",
		trace.WithAttributes(
			attribute.String("convergence.run_id", run.ID),
			attribute.String("convergence.name", name),
			attribute.Int("convergence.steps", run.Steps),
		),
	)
	defer span.End()

	logger := r.logger.WithFields(
		logging.StringField("run_id", run.ID),
		logging.StringField("name", name),
	)

	r.metrics.IncActiveRuns()
	defer r.metrics.DecActiveRuns()

	logger.Debug("convergence_run_started",
		logging.IntField("steps", run.Steps))
	for _, o := range r.observers {
		o.RunStarted(run)
	}

	var runErr error
	for i := 0; i < chain.Len(); i++ {
		if runErr = r.runStep(ctx, logger, run, i, chain.At(i)); runErr != nil {
			break
		}
	}

	elapsed := r.clock.Now().Sub(run.Started)
	outcome := Outcome(runErr)
	r.metrics.RecordRun(outcome, run.Steps, elapsed)
	for _, o := range r.observers {
		o.RunFinished(run, elapsed, runErr)
	}

	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		logger.Warn("convergence_run_failed",
			logging.StringField("outcome", outcome),
			logging.DurationField("elapsed", elapsed),
			logging.ErrorField(runErr),
		)
		return runErr
	}

	span.SetStatus(codes.Ok, "")
	logger.Debug("convergence_run_passed",
		logging.DurationField("elapsed", elapsed))
	return nil
}

func (r *Runner) runStep(
	ctx context.Context,
	logger logging.Logger,
	run RunInfo,
	index int,
	step Step,
) error {
	ctx, span := r.tracer.Start(ctx, "convergence.step",
		trace.WithAttributes(
			attribute.Int("convergence.step.index", index),
			attribute.String("convergence.step.policy", step.Policy.String()),
			attribute.String("convergence.step.condition", step.Label),
			attribute.Int64("convergence.step.timeout_ms", step.Timeout.Milliseconds()),
		),
	)
	defer span.End()

	logger = logger.WithFields(
		logging.IntField("step", index),
		logging.StringField("policy", step.Policy.String()),
		logging.StringField("condition", step.Label),
	)

	for _, o := range r.observers {
		o.StepStarted(run, index, step)
	}
	logger.Debug("convergence_step_started",
		logging.DurationField("timeout", step.Timeout))

	report, err := r.poller.Poll(ctx, step)

	r.metrics.RecordStep(
		step.Policy.String(), Outcome(err),
		report.Attempts, report.Elapsed,
	)
	for _, o := range r.observers {
		o.StepFinished(run, index, step, report, err)
	}

	span.SetAttributes(attribute.Int("convergence.step.attempts", report.Attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debug("convergence_step_failed",
			logging.IntField("attempts", report.Attempts),
			logging.ErrorField(err),
		)
		return err
	}

	logger.Debug("convergence_step_passed",
		logging.IntField("attempts", report.Attempts),
		logging.DurationField("elapsed", report.Elapsed),
	)
	return nil
}

// Outcome classifies a run or step error into one of the
// metrics.Outcome* labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomePassed
	case errors.Is(err, ErrTimeout):
		return metrics.OutcomeTimedOut
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeFailed
	}
}
