package network

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unsplash_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unsplash_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unsplash_errors_total",
		Help: "Total API errors by kind",
	}, []string{"kind"})

	middlewareFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unsplash_middleware_failures_total",
		Help: "Middleware invocations that panicked or returned no request",
	}, []string{"kind"})
)
