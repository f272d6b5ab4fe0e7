package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatbotMetrics exposes counters/histograms for the intake conversation.
type ChatbotMetrics struct {
	turnsTotal         *prometheus.CounterVec
	proposalsTotal     *prometheus.CounterVec
	assistantFallbacks *prometheus.CounterVec
	turnLatency        *prometheus.HistogramVec
}

func NewChatbotMetrics(reg prometheus.Registerer) *ChatbotMetrics {
	m := &ChatbotMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms",
			Subsystem: "chatbot",
			Name:      "turns_total",
			Help:      "Total chatbot turns by classified intent and language",
		}, []string{"intent", "language"}),
		proposalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms",
			Subsystem: "chatbot",
			Name:      "proposals_total",
			Help:      "Total booking proposals by outcome",
		}, []string{"outcome"}),
		assistantFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms",
			Subsystem: "chatbot",
			Name:      "assistant_calls_total",
			Help:      "Total AI assistant calls by status",
		}, []string{"status"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hms",
			Subsystem: "chatbot",
			Name:      "turn_latency_seconds",
			Help:      "Latency of processing one chatbot turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.proposalsTotal, m.assistantFallbacks, m.turnLatency)
	return m
}

func (m *ChatbotMetrics) ObserveTurn(intent, language string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, language).Inc()
	m.turnLatency.WithLabelValues(intent).Observe(seconds)
}

// ObserveProposal records a booking proposal outcome: "offered",
// "rescheduled", "substituted", "no_slots" or "no_doctor".
func (m *ChatbotMetrics) ObserveProposal(outcome string) {
	if m == nil {
		return
	}
	m.proposalsTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatbotMetrics) ObserveAssistantCall(status string) {
	if m == nil {
		return
	}
	m.assistantFallbacks.WithLabelValues(status).Inc()
}
