package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name unless overridden.
const DefaultNamespace = "convergence"

// PrometheusMetrics implements ConvergenceMetrics with
// prometheus/client_golang collectors.
type PrometheusMetrics struct {
	steps        *prometheus.CounterVec
	attempts     *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	active       prometheus.Gauge
}

// NewPrometheusMetrics creates the collectors and registers them
// with reg. An empty namespace uses DefaultNamespace.
func NewPrometheusMetrics(
	reg prometheus.Registerer,
	namespace string,
) (*PrometheusMetrics, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &PrometheusMetrics{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Convergence steps finished, by policy and outcome.",
		}, []string{"policy", "outcome"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assertion_checks_total",
			Help:      "Assertion checks performed while polling, by policy.",
		}, []string{"policy"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Time spent converging a single step.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"policy"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Convergence chain runs finished, by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time spent running a whole convergence chain.",
			Buckets:   prometheus.DefBuckets,
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Convergence chain runs in progress.",
		}),
	}

	collectors := []prometheus.Collector{
		m.steps, m.attempts, m.stepDuration,
		m.runs, m.runDuration, m.active,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordStep records a finished step.
func (m *PrometheusMetrics) RecordStep(
	policy, outcome string,
	attempts int,
	elapsed time.Duration,
) {
	m.steps.WithLabelValues(policy, outcome).Inc()
	m.attempts.WithLabelValues(policy).Add(float64(attempts))
	m.stepDuration.WithLabelValues(policy).Observe(elapsed.Seconds())
}

// RecordRun records a finished run.
func (m *PrometheusMetrics) RecordRun(
	outcome string,
	_ int,
	elapsed time.Duration,
) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

// IncActiveRuns increments the active runs gauge.
func (m *PrometheusMetrics) IncActiveRuns() {
	m.active.Inc()
}

// DecActiveRuns decrements the active runs gauge.
func (m *PrometheusMetrics) DecActiveRuns() {
	m.active.Dec()
}
