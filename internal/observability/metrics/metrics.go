package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
	RunStatusRejected  = "rejected"
)

const (
	FailureReasonMissingInput = "missing_input"
	FailureReasonEvaluation   = "evaluation"
	FailureReasonDB           = "db"
)

// EngineMetrics captures payroll engine health signals.
type EngineMetrics struct {
	runs               *prometheus.CounterVec
	runDuration        prometheus.Histogram
	staffEvaluated     prometheus.Counter
	evaluationFailures *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *EngineMetrics {
	factory := promauto.With(reg)
	return &EngineMetrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "malipo_computation_runs_total",
			Help: "Computation runs by terminal outcome.",
		}, []string{"status"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "malipo_computation_run_duration_seconds",
			Help:    "Wall time of a full computation run.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		staffEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "malipo_staff_evaluated_total",
			Help: "Staff whose full component chain evaluated cleanly.",
		}),
		evaluationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "malipo_evaluation_failures_total",
			Help: "Per-staff evaluation failures by reason.",
		}, []string{"reason"}),
	}
}

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func (m *EngineMetrics) ObserveRun(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

func (m *EngineMetrics) StaffEvaluated() {
	if m == nil {
		return
	}
	m.staffEvaluated.Inc()
}

func (m *EngineMetrics) EvaluationFailure(reason string) {
	if m == nil {
		return
	}
	m.evaluationFailures.WithLabelValues(reason).Inc()
}
