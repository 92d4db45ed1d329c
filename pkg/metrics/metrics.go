// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ItemsTrackedTotal tracks buffered items by kind.
	ItemsTrackedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentsight_items_tracked_total",
			Help: "Total items buffered for later sending",
		},
		[]string{"kind"},
	)

	// FlushesTotal tracks flush attempts by outcome.
	FlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentsight_flushes_total",
			Help: "Total flush attempts",
		},
		[]string{"status"},
	)

	// BufferedItems tracks the number of items currently waiting to be sent.
	BufferedItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentsight_buffered_items",
			Help: "Items currently buffered across all conversations",
		},
	)

	// FlushItemErrorsTotal tracks per-item send failures during a flush.
	FlushItemErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agentsight_flush_item_errors_total",
			Help: "Items that failed to send during a flush",
		},
	)

	// SendDuration tracks the duration of individual item sends.
	SendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentsight_send_duration_seconds",
			Help:    "Duration of individual item sends",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind", "status"},
	)

	// TokensTrackedTotal tracks accumulated token counts.
	TokensTrackedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentsight_tokens_tracked_total",
			Help: "Total tokens recorded by the accumulator",
		},
		[]string{"counter"},
	)

	// RequestDuration tracks HTTP request duration for the mock server.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentsight_mockd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests for the mock server.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentsight_mockd_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// RecordTrackedItem records a buffered item.
func RecordTrackedItem(kind string) {
	ItemsTrackedTotal.WithLabelValues(kind).Inc()
	BufferedItems.Inc()
}

// RecordDrained records that n buffered items were detached for sending.
func RecordDrained(n int) {
	BufferedItems.Sub(float64(n))
}

// RecordFlush records the outcome of a flush attempt.
func RecordFlush(status string) {
	FlushesTotal.WithLabelValues(status).Inc()
}

// RecordSend records metrics for one item send.
func RecordSend(kind, status string, duration float64) {
	SendDuration.WithLabelValues(kind, status).Observe(duration)
	if status != "success" {
		FlushItemErrorsTotal.Inc()
	}
}

// RecordTokens records accumulated token counts.
func RecordTokens(prompt, completion, total, embedding uint64) {
	TokensTrackedTotal.WithLabelValues("prompt").Add(float64(prompt))
	TokensTrackedTotal.WithLabelValues("completion").Add(float64(completion))
	TokensTrackedTotal.WithLabelValues("total").Add(float64(total))
	TokensTrackedTotal.WithLabelValues("embedding").Add(float64(embedding))
}

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}
