package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a drift run. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Run metrics
	Runs *prometheus.CounterVec

	// Check metrics
	Checks        *prometheus.CounterVec
	CheckDuration *prometheus.HistogramVec

	// Finding metrics
	Findings *prometheus.CounterVec

	// Delegated subprocess metrics
	Subprocesses       *prometheus.CounterVec
	SubprocessDuration *prometheus.HistogramVec

	// Report output metrics
	ReportsWritten *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betty_drift_runs_total",
				Help: "Total number of drift detection runs",
			},
			[]string{"level"},
		),

		Checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betty_drift_checks_total",
				Help: "Total number of drift checks executed",
			},
			[]string{"level", "check"},
		),
		CheckDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "betty_drift_check_duration_seconds",
				Help:    "Drift check duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
			},
			[]string{"level", "check"},
		),

		Findings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betty_drift_findings_total",
				Help: "Total number of drift findings",
			},
			[]string{"level", "severity", "category"},
		),

		Subprocesses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betty_drift_subprocess_total",
				Help: "Total number of delegated subprocess invocations",
			},
			[]string{"command", "outcome"},
		),
		SubprocessDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "betty_drift_subprocess_duration_seconds",
				Help:    "Delegated subprocess duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
			},
			[]string{"command"},
		),

		ReportsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betty_drift_reports_written_total",
				Help: "Total number of report files written",
			},
			[]string{"format"},
		),
	}
}

// RecordRun counts a run at the given detection level
func (m *Metrics) RecordRun(level int) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(strconv.Itoa(level)).Inc()
}

// RecordCheck counts a check execution and observes its duration
func (m *Metrics) RecordCheck(level int, check string, d time.Duration) {
	if m == nil {
		return
	}
	lv := strconv.Itoa(level)
	m.Checks.WithLabelValues(lv, check).Inc()
	m.CheckDuration.WithLabelValues(lv, check).Observe(d.Seconds())
}

// RecordFinding counts a finding
func (m *Metrics) RecordFinding(level int, severity, category string) {
	if m == nil {
		return
	}
	m.Findings.WithLabelValues(strconv.Itoa(level), severity, category).Inc()
}

// RecordSubprocess counts a delegated command by outcome
func (m *Metrics) RecordSubprocess(command, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Subprocesses.WithLabelValues(command, outcome).Inc()
	m.SubprocessDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordReport counts a written report file
func (m *Metrics) RecordReport(format string) {
	if m == nil {
		return
	}
	m.ReportsWritten.WithLabelValues(format).Inc()
}
