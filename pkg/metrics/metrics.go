// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AnalysisDuration tracks end-to-end analysis refresh duration.
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Conversation analysis duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		},
		[]string{"kind", "provider", "status"},
	)

	// AnalysisCacheResults tracks cache outcomes per analysis request.
	AnalysisCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_cache_results_total",
			Help: "Analysis cache hits, misses and forced refreshes",
		},
		[]string{"kind", "result"},
	)

	// ProviderFallbacks tracks remote-to-local fallbacks.
	ProviderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_fallbacks_total",
			Help: "Analyses answered by the local provider after a remote failure",
		},
		[]string{"kind", "reason"},
	)

	// ProviderAvailable reports the last remote availability probe.
	ProviderAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "provider_remote_available",
			Help: "Whether the remote inference provider answered the last probe",
		},
	)

	// MessagesAnalyzed tracks per-message analyses from the bulk pass.
	MessagesAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_analyzed_total",
			Help: "Messages processed by bulk analysis",
		},
		[]string{"status"},
	)

	// StoreErrors tracks store failures by operation.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Embedded store operation failures",
		},
		[]string{"op"},
	)

	// TransportEvents tracks consumed WhatsApp transport events.
	TransportEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transport_events_total",
			Help: "Transport events consumed from the bus",
		},
		[]string{"type", "status"},
	)

	// ExportsTotal tracks generated dashboard exports.
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Dashboard report exports",
		},
		[]string{"format"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAnalysis records metrics for one analysis refresh.
func RecordAnalysis(kind, provider, status string, duration float64) {
	AnalysisDuration.WithLabelValues(kind, provider, status).Observe(duration)
}

// SetProviderAvailable records the result of an availability probe.
func SetProviderAvailable(ok bool) {
	if ok {
		ProviderAvailable.Set(1)
	} else {
		ProviderAvailable.Set(0)
	}
}
