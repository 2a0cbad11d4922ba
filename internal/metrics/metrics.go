package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Step labels used on version/byte metrics so the same vec can report both
// the grpc-receive side and the db-write side of the pipeline.
const (
	StepReceivedFromGrpc = "received_txns_from_grpc"
	StepProcessedBatch   = "processed_batch_to_db"
)

var (
	// Stream
	LatestProcessedVersion = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "stream",
		Name:      "latest_version",
		Help:      "Latest transaction version seen at a pipeline step",
	}, []string{"processor", "step"})

	TransactionUnixTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "stream",
		Name:      "transaction_unix_timestamp",
		Help:      "Unix timestamp of the first transaction in the latest batch",
	}, []string{"processor", "step"})

	ProcessedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "stream",
		Name:      "processed_bytes_total",
		Help:      "Total encoded bytes received from the transaction stream",
	}, []string{"processor", "step"})

	TransactionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "stream",
		Name:      "transactions_processed_total",
		Help:      "Total transactions moved through a pipeline step",
	}, []string{"processor", "step"})

	TransactionsFilteredOut = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "stream",
		Name:      "transactions_filtered_out_total",
		Help:      "Total transactions removed by the transaction filter",
	}, []string{"processor"})

	StreamReconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "stream",
		Name:      "reconnects_total",
		Help:      "Total stream reconnection attempts",
	}, []string{"processor"})

	FetchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexer",
		Subsystem: "stream",
		Name:      "fetch_duration_seconds",
		Help:      "Wall time spent waiting for a single response batch",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"processor"})

	StreamTPS = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "stream",
		Name:      "transactions_per_second",
		Help:      "Moving-average transactions per second received from upstream",
	}, []string{"processor"})

	// Processors
	ProcessorBatchesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "processor",
		Name:      "batches_processed_total",
		Help:      "Total batches durably written by a processor",
	}, []string{"processor"})

	ProcessorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "processor",
		Name:      "errors_total",
		Help:      "Total processor batch failures (after sanitize retry)",
	}, []string{"processor"})

	ProcessorBatchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexer",
		Subsystem: "processor",
		Name:      "batch_duration_seconds",
		Help:      "Processor batch processing duration (extract + DB transaction)",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"processor"})

	ProcessorSanitizeRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "processor",
		Name:      "sanitize_retries_total",
		Help:      "Total write retries after sanitizing rows for encoding faults",
	}, []string{"processor"})

	// Database pool
	DBPoolOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_open",
		Help:      "Current number of open PostgreSQL connections in the pool",
	})

	DBPoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_in_use",
		Help:      "Current number of in-use PostgreSQL connections in the pool",
	})

	DBPoolIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_idle",
		Help:      "Current number of idle PostgreSQL connections in the pool",
	})
)
