// Package metrics declares the Prometheus collectors of the assistant.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "kepsek"
	subsystem = "assistant"
)

var (
	// GatewayCallsTotal counts model calls by provider, model and outcome ("ok" or "error").
	GatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gateway_calls_total",
			Help:      "Total number of chat completion calls",
		},
		[]string{"provider", "model", "status"},
	)

	// GatewayCallDuration observes the latency of model calls.
	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gateway_call_duration_seconds",
			Help:      "Chat completion call latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider", "model"},
	)

	// SessionsActive is the number of live sessions held in memory.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_active",
			Help:      "Number of live chat sessions",
		},
	)

	// TemplatePromptsTotal counts prompts prepared from template forms.
	TemplatePromptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "template_prompts_total",
			Help:      "Total number of prompts prepared from templates",
		},
		[]string{"kind"},
	)

	// TranscriptExportsTotal counts transcript downloads.
	TranscriptExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transcript_exports_total",
			Help:      "Total number of transcript downloads",
		},
	)
)

// Status returns the status label for an error result.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
