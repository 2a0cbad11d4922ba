// Package processor holds the sink side of the pipeline: each processor
// turns a batch of raw transactions into rows and commits them durably
// before the batch is checkpointed.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"

	"github.com/celochoi/aptos-indexer-processors/internal/store"
)

const (
	DefaultProcessorName = "default"
	EventProcessorName   = "events"
)

// Result reports a successful batch commit.
type Result struct {
	StartVersion        uint64
	EndVersion          uint64
	LastTxnTimestamp    *time.Time
	ProcessingDuration  time.Duration
	DBInsertionDuration time.Duration
}

// Processor consumes one contiguous-source batch and must not return nil
// until every row derived from it is durably committed.
type Processor interface {
	Name() string
	ProcessTransactions(ctx context.Context, txns []*transactionv1.Transaction, startVersion, endVersion uint64) (Result, error)
}

// RangeError tags a processing failure with the version span it covers so
// operators know exactly which range needs a re-run.
type RangeError struct {
	StartVersion uint64
	EndVersion   uint64
	Err          error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("processing versions [%d, %d]: %v", e.StartVersion, e.EndVersion, e.Err)
}

func (e *RangeError) Unwrap() error { return e.Err }

// Deps carries the shared wiring every processor construction needs.
type Deps struct {
	Runner        store.TxRunner
	Transactions  store.LedgerTransactionRepository
	Events        store.EventRepository
	TableItems    store.TableItemRepository
	TableMetadata store.TableMetadataRepository
	Logger        *slog.Logger
}

// New builds a processor by its configured name.
func New(name string, deps Deps) (Processor, error) {
	switch name {
	case DefaultProcessorName:
		return NewDefaultProcessor(deps.Runner, deps.Transactions, deps.TableItems, deps.TableMetadata, deps.Logger), nil
	case EventProcessorName:
		return NewEventProcessor(deps.Runner, deps.Events, deps.Logger), nil
	default:
		return nil, fmt.Errorf("unknown processor %q", name)
	}
}
