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

	// LLMRoundTripDuration tracks LLM round-trip duration.
	LLMRoundTripDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_roundtrip_duration_seconds",
			Help:    "LLM round-trip duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"provider", "status"},
	)

	// LLMRoundTripsTotal tracks total LLM round-trips per dialogue outcome.
	LLMRoundTripsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_roundtrips_total",
			Help: "Total LLM round-trips",
		},
		[]string{"provider", "result"},
	)

	// FunctionDispatchesTotal tracks function registry dispatches.
	FunctionDispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "function_dispatches_total",
			Help: "Total function registry dispatches",
		},
		[]string{"function", "status"},
	)

	// BookingsTotal tracks booking operations.
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_total",
			Help: "Total booking operations",
		},
		[]string{"operation"},
	)

	// BookingConflictsTotal tracks bookings rejected with a time conflict.
	BookingConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Bookings rejected due to a time conflict",
		},
	)

	// SessionsActive tracks live conversation sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversation_sessions_active",
			Help: "Number of live conversation sessions",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRoundTrip records metrics for a single LLM round-trip.
func RecordLLMRoundTrip(provider, result string, duration float64) {
	LLMRoundTripDuration.WithLabelValues(provider, result).Observe(duration)
	LLMRoundTripsTotal.WithLabelValues(provider, result).Inc()
}

// RecordDispatch records a function registry dispatch.
func RecordDispatch(function, status string) {
	FunctionDispatchesTotal.WithLabelValues(function, status).Inc()
}
