package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreWrites tracks successful writes by operation (put, touch, delete)
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unsplash_store_writes_total",
			Help: "Total number of record store writes",
		},
		[]string{"operation"},
	)

	// StoreErrors tracks failed store operations
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unsplash_store_errors_total",
			Help: "Total number of record store errors",
		},
		[]string{"operation"},
	)
)
