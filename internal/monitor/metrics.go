package monitor

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics for one runner process.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	SuiteDuration      *prometheus.HistogramVec
	TestsTotal         *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
	SubmissionErrors   prometheus.Counter
	StudentCodeBytes   prometheus.Histogram
	LastRunTimestamp   prometheus.Gauge
}

// NewMetrics creates and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "exam_runner",
				Name:      "runs_total",
				Help:      "Total question runs by terminal state.",
			},
			[]string{"question", "state"},
		),

		SuiteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "exam_runner",
				Name:      "suite_duration_seconds",
				Help:      "Duration of test suite executions in seconds, as reported by the engine.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"engine"},
		),

		TestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "exam_runner",
				Name:      "tests_total",
				Help:      "Individual test outcomes seen in suite reports.",
			},
			[]string{"outcome"},
		),

		SubmissionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "exam_runner",
				Subsystem: "api",
				Name:      "submission_duration_seconds",
				Help:      "Round-trip time of submissions to the grading service.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		SubmissionErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "exam_runner",
				Subsystem: "api",
				Name:      "submission_errors_total",
				Help:      "Submissions the grading service did not accept.",
			},
		),

		StudentCodeBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "exam_runner",
				Name:      "student_code_bytes",
				Help:      "Size of submitted answer files in bytes.",
				Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
			},
		),

		LastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "exam_runner",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time at which the last run finished.",
			},
		),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.SuiteDuration,
		m.TestsTotal,
		m.SubmissionDuration,
		m.SubmissionErrors,
		m.StudentCodeBytes,
		m.LastRunTimestamp,
	)

	return m
}

// RecordSuite records an engine report's duration and outcome counts.
func (m *Metrics) RecordSuite(engine string, durationSec float64, outcomes map[string]int) {
	m.SuiteDuration.WithLabelValues(engine).Observe(durationSec)
	for outcome, n := range outcomes {
		m.TestsTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(question int, state string, finishedUnix float64) {
	m.RunsTotal.WithLabelValues(fmt.Sprintf("%d", question), state).Inc()
	m.LastRunTimestamp.Set(finishedUnix)
}

// WriteTextfile dumps the registry for node-exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
