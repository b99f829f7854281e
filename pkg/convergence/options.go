package convergence

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"digital.vasic.convergence/pkg/config"
	"digital.vasic.convergence/pkg/logging"
	"digital.vasic.convergence/pkg/metrics"
)

// Option configures a Runner.
type Option func(*Runner)

// WithPoller replaces the default poller. WithClock and
// WithInterval have no effect when a poller is supplied.
func WithPoller(p Poller) Option {
	return func(r *Runner) {
		r.poller = p
	}
}

// WithClock sets the clock used for polling and run timing.
func WithClock(c Clock) Option {
	return func(r *Runner) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithInterval sets the pause between assertion checks.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.interval = d
	}
}

// WithLogger sets the logger used by the runner.
func WithLogger(logger logging.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.ConvergenceMetrics) Option {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithObserver adds a lifecycle observer. Observers are called
// in the order they were added.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observers = append(r.observers, o)
	}
}

// WithTracer sets the tracer for run and step spans. The default
// is the global otel tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// FromConfig translates cfg into runner options. Metrics are
// registered with reg when it is non-nil. The returned logger
// must be closed by the caller.
func FromConfig(
	cfg *config.Config,
	reg prometheus.Registerer,
) ([]Option, logging.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, err
	}

	opts := []Option{
		WithInterval(cfg.Interval),
		WithLogger(logger),
	}

	if reg != nil {
		m, err := metrics.NewPrometheusMetrics(reg, cfg.MetricsNamespace)
		if err != nil {
			_ = logger.Close()
			return nil, nil, fmt.Errorf(
				"failed to register metrics: %w", err,
			)
		}
		opts = append(opts, WithMetrics(m))
	}

	return opts, logger, nil
}
