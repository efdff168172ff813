package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the intake pipeline.
type IntakeMetrics struct {
	llmCallsTotal       *prometheus.CounterVec
	llmLatency          *prometheus.HistogramVec
	appointmentsCreated prometheus.Counter
	speechTotal         *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		llmCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "intake",
			Name:      "llm_calls_total",
			Help:      "Total language model calls by pipeline operation",
		}, []string{"operation", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "intake",
			Name:      "llm_latency_seconds",
			Help:      "Latency of language model calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		appointmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "intake",
			Name:      "appointments_created_total",
			Help:      "Total appointments finalized and stored",
		}),
		speechTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "intake",
			Name:      "speech_synthesis_total",
			Help:      "Total speech synthesis requests",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.llmCallsTotal, m.llmLatency, m.appointmentsCreated, m.speechTotal)
	return m
}

func (m *IntakeMetrics) ObserveLLMCall(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.llmCallsTotal.WithLabelValues(operation, status).Inc()
	m.llmLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *IntakeMetrics) ObserveAppointmentCreated() {
	if m == nil {
		return
	}
	m.appointmentsCreated.Inc()
}

func (m *IntakeMetrics) ObserveSpeechSynthesis(status string) {
	if m == nil {
		return
	}
	m.speechTotal.WithLabelValues(status).Inc()
}
