package processor

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/celochoi/aptos-indexer-processors/internal/domain/model"
	"github.com/celochoi/aptos-indexer-processors/internal/metrics"
	"github.com/celochoi/aptos-indexer-processors/internal/store"
	"github.com/celochoi/aptos-indexer-processors/internal/tracing"
)

// EventProcessor writes the emitted events of every transaction in a batch.
type EventProcessor struct {
	runner store.TxRunner
	events store.EventRepository
	logger *slog.Logger
}

func NewEventProcessor(runner store.TxRunner, events store.EventRepository, logger *slog.Logger) *EventProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventProcessor{
		runner: runner,
		events: events,
		logger: logger.With("component", "processor", "processor", EventProcessorName),
	}
}

func (p *EventProcessor) Name() string { return EventProcessorName }

func (p *EventProcessor) ProcessTransactions(ctx context.Context, txns []*transactionv1.Transaction, startVersion, endVersion uint64) (Result, error) {
	ctx, span := tracing.Tracer("processor").Start(ctx, "events.processTransactions",
		otelTrace.WithAttributes(
			attribute.Int64("start_version", int64(startVersion)),
			attribute.Int64("end_version", int64(endVersion)),
			attribute.Int("tx_count", len(txns)),
		),
	)
	defer span.End()

	processingStart := time.Now()

	var rows []*model.Event
	for _, txn := range txns {
		rows = append(rows, model.EventsFromProto(txn)...)
	}

	processingDuration := time.Since(processingStart)
	insertStart := time.Now()

	err := p.insert(ctx, rows)
	if err != nil {
		p.logger.Warn("batch insert failed, sanitizing and retrying",
			"start_version", startVersion,
			"end_version", endVersion,
			"error", err,
		)
		metrics.ProcessorSanitizeRetries.WithLabelValues(EventProcessorName).Inc()
		for _, e := range rows {
			e.Sanitize()
		}
		err = p.insert(ctx, rows)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ProcessorErrors.WithLabelValues(EventProcessorName).Inc()
		return Result{}, &RangeError{StartVersion: startVersion, EndVersion: endVersion, Err: err}
	}

	dbDuration := time.Since(insertStart)
	metrics.ProcessorBatchesProcessed.WithLabelValues(EventProcessorName).Inc()
	metrics.ProcessorBatchLatency.WithLabelValues(EventProcessorName).Observe(dbDuration.Seconds())

	return Result{
		StartVersion:        startVersion,
		EndVersion:          endVersion,
		LastTxnTimestamp:    lastTimestamp(txns),
		ProcessingDuration:  processingDuration,
		DBInsertionDuration: dbDuration,
	}, nil
}

func (p *EventProcessor) insert(ctx context.Context, rows []*model.Event) error {
	return p.runner.WithinTx(ctx, func(tx *sql.Tx) error {
		return p.events.BulkUpsertTx(ctx, tx, rows)
	})
}
