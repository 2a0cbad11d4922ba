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

// DefaultProcessor writes the base ledger tables: flattened transactions,
// table item writes and deletes, and table handle metadata.
type DefaultProcessor struct {
	runner        store.TxRunner
	transactions  store.LedgerTransactionRepository
	tableItems    store.TableItemRepository
	tableMetadata store.TableMetadataRepository
	logger        *slog.Logger
}

func NewDefaultProcessor(
	runner store.TxRunner,
	transactions store.LedgerTransactionRepository,
	tableItems store.TableItemRepository,
	tableMetadata store.TableMetadataRepository,
	logger *slog.Logger,
) *DefaultProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultProcessor{
		runner:        runner,
		transactions:  transactions,
		tableItems:    tableItems,
		tableMetadata: tableMetadata,
		logger:        logger.With("component", "processor", "processor", DefaultProcessorName),
	}
}

func (p *DefaultProcessor) Name() string { return DefaultProcessorName }

func (p *DefaultProcessor) ProcessTransactions(ctx context.Context, txns []*transactionv1.Transaction, startVersion, endVersion uint64) (Result, error) {
	ctx, span := tracing.Tracer("processor").Start(ctx, "default.processTransactions",
		otelTrace.WithAttributes(
			attribute.Int64("start_version", int64(startVersion)),
			attribute.Int64("end_version", int64(endVersion)),
			attribute.Int("tx_count", len(txns)),
		),
	)
	defer span.End()

	processingStart := time.Now()

	txnRows := make([]*model.LedgerTransaction, 0, len(txns))
	var itemRows []*model.TableItem
	metadataByHandle := make(map[string]*model.TableMetadata)
	for _, txn := range txns {
		row, err := model.LedgerTransactionFromProto(txn)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.ProcessorErrors.WithLabelValues(DefaultProcessorName).Inc()
			return Result{}, &RangeError{StartVersion: startVersion, EndVersion: endVersion, Err: err}
		}
		txnRows = append(txnRows, row)

		items, metadata := model.TableItemsFromProto(txn)
		itemRows = append(itemRows, items...)
		for handle, m := range metadata {
			metadataByHandle[handle] = m
		}
	}
	metadataRows := model.SortTableMetadata(metadataByHandle)

	processingDuration := time.Since(processingStart)
	insertStart := time.Now()

	err := p.insert(ctx, txnRows, itemRows, metadataRows)
	if err != nil {
		// On-chain strings can carry NUL bytes postgres rejects. Scrub
		// every row once and retry; a second failure is real.
		p.logger.Warn("batch insert failed, sanitizing and retrying",
			"start_version", startVersion,
			"end_version", endVersion,
			"error", err,
		)
		metrics.ProcessorSanitizeRetries.WithLabelValues(DefaultProcessorName).Inc()
		for _, t := range txnRows {
			t.Sanitize()
		}
		for _, it := range itemRows {
			it.Sanitize()
		}
		for _, m := range metadataRows {
			m.Sanitize()
		}
		err = p.insert(ctx, txnRows, itemRows, metadataRows)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ProcessorErrors.WithLabelValues(DefaultProcessorName).Inc()
		return Result{}, &RangeError{StartVersion: startVersion, EndVersion: endVersion, Err: err}
	}

	dbDuration := time.Since(insertStart)
	metrics.ProcessorBatchesProcessed.WithLabelValues(DefaultProcessorName).Inc()
	metrics.ProcessorBatchLatency.WithLabelValues(DefaultProcessorName).Observe(dbDuration.Seconds())

	return Result{
		StartVersion:        startVersion,
		EndVersion:          endVersion,
		LastTxnTimestamp:    lastTimestamp(txns),
		ProcessingDuration:  processingDuration,
		DBInsertionDuration: dbDuration,
	}, nil
}

func (p *DefaultProcessor) insert(
	ctx context.Context,
	txns []*model.LedgerTransaction,
	items []*model.TableItem,
	metadata []*model.TableMetadata,
) error {
	return p.runner.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := p.transactions.BulkUpsertTx(ctx, tx, txns); err != nil {
			return err
		}
		if err := p.tableItems.BulkUpsertTx(ctx, tx, items); err != nil {
			return err
		}
		return p.tableMetadata.BulkUpsertTx(ctx, tx, metadata)
	})
}

func lastTimestamp(txns []*transactionv1.Transaction) *time.Time {
	if len(txns) == 0 {
		return nil
	}
	ts := txns[len(txns)-1].GetTimestamp()
	if ts == nil {
		return nil
	}
	t := time.Unix(ts.GetSeconds(), int64(ts.GetNanos())).UTC()
	return &t
}
