package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for risk assessments.
type Metrics struct {
	// Evaluations by risk tier
	Outcomes *prometheus.CounterVec

	// Rejected or failed evaluations by reason
	Failures *prometheus.CounterVec

	// Attribution stage failures; the prediction is still returned
	AttributionFailures prometheus.Counter

	// Per-stage latency: reconcile, predict, explain
	StageLatency *prometheus.HistogramVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram

	// Requests refused at the HTTP boundary before reaching the service
	RejectedRequests *prometheus.CounterVec

	// Typical-case table evaluations that failed
	CaseFailures prometheus.Counter
}

// New creates a new Metrics instance with all assessment metrics registered
// on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the assessment metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prognosis_assessment_outcomes_total",
			Help: "Total completed assessments by risk tier",
		}, []string{"tier"}),

		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prognosis_assessment_failures_total",
			Help: "Total assessments that produced no prediction, by reason",
		}, []string{"reason"}), // reason: "validation", "prediction", "unavailable"

		AttributionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prognosis_attribution_failures_total",
			Help: "Total assessments whose attribution stage failed",
		}),

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prognosis_assessment_stage_duration_seconds",
			Help:    "Duration of assessment stages",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"stage"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prognosis_assessment_evaluate_duration_seconds",
			Help:    "Duration of a full assessment including attribution",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		RejectedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prognosis_assessment_rejected_requests_total",
			Help: "Total requests refused before evaluation (malformed body or envelope)",
		}, []string{"endpoint"}),

		CaseFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prognosis_typical_case_failures_total",
			Help: "Total failed typical-case table evaluations",
		}),
	}
}

// IncrementOutcome records a completed assessment.
func (m *Metrics) IncrementOutcome(tier string) {
	if m != nil {
		m.Outcomes.WithLabelValues(tier).Inc()
	}
}

// IncrementFailure records an assessment that produced no prediction.
func (m *Metrics) IncrementFailure(reason string) {
	if m != nil {
		m.Failures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementAttributionFailure() {
	if m != nil {
		m.AttributionFailures.Inc()
	}
}

// ObserveStageLatency records the duration of one stage.
func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementRejectedRequest records a request refused at the HTTP boundary.
func (m *Metrics) IncrementRejectedRequest(endpoint string) {
	if m != nil {
		m.RejectedRequests.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) IncrementCaseFailure() {
	if m != nil {
		m.CaseFailures.Inc()
	}
}
