package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestIntakeMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)
	m.ObserveLLMCall("interpret", "ok", 0.5)
	m.ObserveLLMCall("propose", "error", 1.2)
	m.ObserveAppointmentCreated()
	m.ObserveSpeechSynthesis("ok")
}

func TestIntakeMetricsNilSafe(t *testing.T) {
	var m *IntakeMetrics
	m.ObserveLLMCall("interpret", "ok", 0.1)
	m.ObserveAppointmentCreated()
	m.ObserveSpeechSynthesis("error")
}
