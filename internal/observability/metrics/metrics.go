package metrics

import "github.com/prometheus/client_golang/prometheus"

// SurveyMetrics exposes counters/histograms for survey turn processing.
type SurveyMetrics struct {
	turnsTotal         *prometheus.CounterVec
	answersRecorded    prometheus.Counter
	capabilityLatency  *prometheus.HistogramVec
	capabilityFailures *prometheus.CounterVec
}

func NewSurveyMetrics(reg prometheus.Registerer) *SurveyMetrics {
	m := &SurveyMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surveypilot",
			Subsystem: "survey",
			Name:      "turns_total",
			Help:      "Total processed survey turns",
		}, []string{"kind", "outcome"}),
		answersRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surveypilot",
			Subsystem: "survey",
			Name:      "answers_recorded_total",
			Help:      "Total finalized answers written to the store",
		}),
		capabilityLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "surveypilot",
			Subsystem: "survey",
			Name:      "capability_latency_seconds",
			Help:      "Latency of external capability calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"capability"}),
		capabilityFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surveypilot",
			Subsystem: "survey",
			Name:      "capability_failures_total",
			Help:      "Total failed external capability calls",
		}, []string{"capability"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.answersRecorded, m.capabilityLatency, m.capabilityFailures)
	return m
}

func (m *SurveyMetrics) ObserveTurn(kind, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *SurveyMetrics) ObserveAnswerRecorded() {
	if m == nil {
		return
	}
	m.answersRecorded.Inc()
}

func (m *SurveyMetrics) ObserveCapability(capability string, seconds float64) {
	if m == nil {
		return
	}
	m.capabilityLatency.WithLabelValues(capability).Observe(seconds)
}

func (m *SurveyMetrics) ObserveCapabilityFailure(capability string) {
	if m == nil {
		return
	}
	m.capabilityFailures.WithLabelValues(capability).Inc()
}
