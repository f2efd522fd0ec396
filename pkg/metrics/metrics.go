// Package metrics provides Prometheus metrics for the ipet service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRecordsTotal tracks offline base records processed by outcome
	SyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ipet",
			Subsystem: "sync",
			Name:      "records_total",
			Help:      "Total number of offline base records processed by outcome",
		},
		[]string{"outcome"},
	)

	// SyncCyclesTotal tracks sync cycles by status
	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ipet",
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Total number of sync cycles by status",
		},
		[]string{"status"},
	)

	// SyncCycleDuration tracks full fetch+reconcile cycle duration in seconds
	SyncCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ipet",
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of full sync cycles in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// FetchDuration tracks remote file transfer duration in seconds
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ipet",
			Subsystem: "sync",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of remote offline base transfers in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// HTTPRequestsTotal tracks served HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ipet",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)
)

// Sync record outcomes
const (
	OutcomeCreated    = "created"
	OutcomeDuplicate  = "duplicate"
	OutcomeUnresolved = "unresolved"
	OutcomeParseError = "parse_error"
	OutcomeFailed     = "failed"
)

// Sync cycle statuses
const (
	CycleSuccess     = "success"
	CycleFetchFailed = "fetch_failed"
	CycleSyncFailed  = "reconcile_failed"
)
