package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestAttempts tracks every attempt sent to the transport, retries included
	RequestAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpguard_request_attempts_total",
			Help: "Total number of request attempts sent to the transport",
		},
		[]string{"method"},
	)

	// RequestRetries tracks retries granted by the retry budget
	RequestRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpguard_request_retries_total",
			Help: "Total number of retries scheduled after a transient failure",
		},
		[]string{"status"},
	)

	// TerminalFailures tracks failures surfaced to the caller
	TerminalFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpguard_terminal_failures_total",
			Help: "Total number of requests that ended in a terminal failure",
		},
		[]string{"status"},
	)

	// RequestLatency tracks the duration of a logical request including retries
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpguard_request_duration_seconds",
			Help:    "Duration of a logical request including retry delays",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "outcome"},
	)

	// ToastsShown tracks notifications enqueued per type
	ToastsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpguard_toasts_shown_total",
			Help: "Total number of toasts shown",
		},
		[]string{"type"},
	)

	// ToastsActive tracks the number of toasts currently displayed
	ToastsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpguard_toasts_active",
			Help: "Number of toasts currently in the queue",
		},
	)

	// LogEntriesRecorded tracks log buffer records per level
	LogEntriesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpguard_log_entries_total",
			Help: "Total number of log entries recorded",
		},
		[]string{"level"},
	)

	// LogBufferSize tracks the length of the persisted log buffer
	LogBufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpguard_log_buffer_size",
			Help: "Number of entries in the persisted log buffer",
		},
	)

	// LogStorageErrors tracks absorbed persistence failures
	LogStorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpguard_log_storage_errors_total",
			Help: "Total number of log buffer persistence failures",
		},
		[]string{"op"},
	)

	// RemoteSinkFailures tracks log entries the remote sink did not accept
	RemoteSinkFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "httpguard_remote_sink_failures_total",
			Help: "Total number of failed remote log deliveries",
		},
	)

	// DBConnectionPoolUsage tracks the SQL store connection pool usage percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpguard_db_connection_pool_usage_percent",
			Help: "Percentage of open SQL store connections against the pool limit",
		},
	)
)
