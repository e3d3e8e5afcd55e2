// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Database query performance (DuckDB)
// - Last.fm client calls and circuit breaker state
// - Album info cache efficiency
// - Webhook ingestion outcomes

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Webhook Ingestion Metrics
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of movie webhook events by outcome",
		},
		[]string{"outcome"}, // "accepted", "rejected", "unauthorized", "error"
	)

	WebhookProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_duration_seconds",
			Help:    "Duration of webhook event processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Last.fm Client Metrics
	LastfmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lastfm_requests_total",
			Help: "Total number of Last.fm API requests",
		},
		[]string{"method", "result"}, // result: "success", "failure"
	)

	LastfmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lastfm_request_duration_seconds",
			Help:    "Duration of Last.fm API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	LastfmRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lastfm_request_retries_total",
			Help: "Total number of Last.fm request retry attempts",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// Album Info Cache Metrics
	AlbumCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "album_cache_hits_total",
			Help: "Total number of album info cache hits (DB)",
		},
	)

	AlbumCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "album_cache_misses_total",
			Help: "Total number of album info cache misses (API fetch required)",
		},
	)

	// Access Gate Metrics
	AccessDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_denials_total",
			Help: "Total number of requests denied by the access gate",
		},
		[]string{"reason"}, // "token", "ip"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "commit"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordWebhookEvent records the outcome of a movie webhook event
func RecordWebhookEvent(outcome string, duration time.Duration) {
	WebhookEventsTotal.WithLabelValues(outcome).Inc()
	WebhookProcessingDuration.Observe(duration.Seconds())
}

// RecordLastfmRequest records a Last.fm API call
func RecordLastfmRequest(method string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	LastfmRequestsTotal.WithLabelValues(method, result).Inc()
	LastfmRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordAlbumCacheLookup records an album info cache hit or miss
func RecordAlbumCacheLookup(hit bool) {
	if hit {
		AlbumCacheHits.Inc()
	} else {
		AlbumCacheMisses.Inc()
	}
}

// RecordAccessDenial records a request rejected by the access gate
func RecordAccessDenial(reason string) {
	AccessDenials.WithLabelValues(reason).Inc()
}

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit string) {
	AppInfo.WithLabelValues(version, commit).Set(1)
}
