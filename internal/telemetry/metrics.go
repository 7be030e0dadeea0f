package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
	OutcomeBusy     = "busy"
	OutcomeStale    = "stale"
)

// Metrics groups the service's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	analyses        *prometheus.CounterVec
	analysisSeconds prometheus.Histogram
	chatMessages    *prometheus.CounterVec
	sessionsOpen    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "icp_analyses_total",
			Help: "Product analyses by outcome.",
		}, []string{"outcome"}),
		analysisSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "icp_analysis_duration_seconds",
			Help:    "Time spent waiting for the model to produce an analysis.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		chatMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "icp_chat_messages_total",
			Help: "Persona chat sends by outcome.",
		}, []string{"outcome"}),
		sessionsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "icp_chat_sessions_open",
			Help: "Chat sessions currently held in memory.",
		}),
	}
}

func (m *Metrics) ObserveAnalysis(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
	m.analysisSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveChat(outcome string) {
	if m == nil {
		return
	}
	m.chatMessages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpen.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsOpen.Dec()
}
