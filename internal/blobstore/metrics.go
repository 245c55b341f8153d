package blobstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts blob operations.
	// Labels: backend, op (get, put), result (success, not_found, error)
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roleshuffle",
			Subsystem: "blobstore",
			Name:      "operations_total",
			Help:      "Total number of blob store operations",
		},
		[]string{"backend", "op", "result"},
	)

	// OperationDuration tracks blob operation latency.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roleshuffle",
			Subsystem: "blobstore",
			Name:      "operation_duration_seconds",
			Help:      "Duration of blob store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	// BlobBytes records the size of the last blob read or written per key.
	BlobBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "roleshuffle",
			Subsystem: "blobstore",
			Name:      "blob_bytes",
			Help:      "Size in bytes of the last blob read or written",
		},
		[]string{"backend", "key"},
	)
)
