package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application.
// They are registered once on the default registry at package init.
type Metrics struct {
	// Classifier
	Classifications *prometheus.CounterVec

	// Dispatcher
	RouteRequests *prometheus.CounterVec
	RouteLatency  *prometheus.HistogramVec
	RouteFallback *prometheus.CounterVec

	// Recommender
	Recommendations *prometheus.CounterVec
}

var globalMetrics = &Metrics{
	Classifications: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anivise_intent_classifications_total",
		Help: "Intent classifications by outcome",
	}, []string{"outcome"}), // parsed, repaired, heuristic, empty

	RouteRequests: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anivise_route_requests_total",
		Help: "Dispatched intents by intent and result",
	}, []string{"intent", "result"}), // result: ok, empty, error

	RouteLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anivise_route_duration_seconds",
		Help:    "Time spent dispatching an intent to upstream calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"intent"}),

	RouteFallback: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anivise_route_fallbacks_total",
		Help: "Fallback queries used when the primary query returned nothing",
	}, []string{"intent", "fallback"}),

	Recommendations: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anivise_recommendations_total",
		Help: "Free-form recommendation requests by result",
	}, []string{"result"}), // ok, empty, error
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordClassification increments the classification counter for outcome
func (m *Metrics) RecordClassification(outcome string) {
	m.Classifications.WithLabelValues(outcome).Inc()
}

// RecordRoute records one dispatch
func (m *Metrics) RecordRoute(intent, result string, duration time.Duration) {
	m.RouteRequests.WithLabelValues(intent, result).Inc()
	m.RouteLatency.WithLabelValues(intent).Observe(duration.Seconds())
}

// RecordFallback records a fallback query being used
func (m *Metrics) RecordFallback(intent, fallback string) {
	m.RouteFallback.WithLabelValues(intent, fallback).Inc()
}

// RecordRecommendation records a recommendation request result
func (m *Metrics) RecordRecommendation(result string) {
	m.Recommendations.WithLabelValues(result).Inc()
}
