// Package metrics exposes the Prometheus metrics of the client.
// The metrics themselves are defined in the packages that record them
// (network, cache, ratelimit, store) and registered via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package's promauto metrics land in.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the matching gatherer served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/network):
//   - unsplash_requests_total{endpoint, status} (Counter): requests by endpoint name and HTTP status, "cache" for cache hits
//   - unsplash_request_duration_seconds{endpoint} (Histogram): transport duration by endpoint
//   - unsplash_errors_total{kind} (Counter): failures by error kind
//   - unsplash_middleware_failures_total{kind} (Counter): middleware panics and nil results
//
// Rate Limit Metrics (pkg/ratelimit):
//   - unsplash_ratelimit_remaining (Gauge): X-Ratelimit-Remaining of the last response
//   - unsplash_ratelimit_limit (Gauge): X-Ratelimit-Limit of the last response
//   - unsplash_ratelimit_header_errors_total (Counter): unparsable rate limit headers
//
// Cache Metrics (pkg/cache):
//   - unsplash_cache_hits_total{layer} (Counter): hits by layer (redis, memory)
//   - unsplash_cache_misses_total (Counter): misses
//   - unsplash_cache_size_bytes{layer} (Gauge): bytes written
//   - unsplash_304_responses_total (Counter): 304 Not Modified responses
//   - unsplash_conditional_requests_total (Counter): revalidation requests
//   - unsplash_cache_errors_total{operation} (Counter): cache operation errors
//
// Store Metrics (pkg/store):
//   - unsplash_store_writes_total{operation} (Counter): put, touch and delete
//   - unsplash_store_errors_total{operation} (Counter): failed store operations
//
// Example Prometheus Queries:
//
//	# Remaining hourly quota
//	unsplash_ratelimit_remaining
//
//	# Cache Hit Rate
//	sum(rate(unsplash_cache_hits_total[5m])) /
//	(sum(rate(unsplash_cache_hits_total[5m])) + sum(rate(unsplash_cache_misses_total[5m])))
//
//	# P95 Request Latency
//	histogram_quantile(0.95, rate(unsplash_request_duration_seconds_bucket[5m]))
