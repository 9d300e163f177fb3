package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSurveyMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSurveyMetrics(reg)

	m.ObserveTurn("advance", "recorded")
	m.ObserveTurn("advance", "recorded")
	m.ObserveAnswerRecorded()
	m.ObserveCapability("classify", 0.2)
	m.ObserveCapabilityFailure("classify")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.turnsTotal.WithLabelValues("advance", "recorded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.answersRecorded))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.capabilityFailures.WithLabelValues("classify")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *SurveyMetrics
	m.ObserveTurn("begin", "prompted")
	m.ObserveAnswerRecorded()
	m.ObserveCapability("classify", 1)
	m.ObserveCapabilityFailure("classify")
}
