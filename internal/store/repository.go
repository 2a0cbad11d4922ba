package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/celochoi/aptos-indexer-processors/internal/domain/model"
)

// TxRunner runs a function inside a database transaction, committing on nil
// and rolling back on error. Processors depend on this instead of *sql.DB so
// tests can fake transactional writes.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// LedgerTransactionRepository provides access to flattened ledger transactions.
type LedgerTransactionRepository interface {
	BulkUpsertTx(ctx context.Context, tx *sql.Tx, txns []*model.LedgerTransaction) error
}

// EventRepository provides access to extracted events.
type EventRepository interface {
	BulkUpsertTx(ctx context.Context, tx *sql.Tx, events []*model.Event) error
}

// TableItemRepository provides access to table item writes and deletes.
type TableItemRepository interface {
	BulkUpsertTx(ctx context.Context, tx *sql.Tx, items []*model.TableItem) error
}

// TableMetadataRepository provides access to table handle type metadata.
type TableMetadataRepository interface {
	BulkUpsertTx(ctx context.Context, tx *sql.Tx, rows []*model.TableMetadata) error
}

// ProcessorStatusRepository tracks per-processor checkpoint progress.
type ProcessorStatusRepository interface {
	Upsert(ctx context.Context, processor string, lastSuccessVersion uint64, lastTxnTimestamp *time.Time) error
	GetLastSuccessVersion(ctx context.Context, processor string) (*uint64, error)
}

// LedgerInfoRepository stores the chain identity the database belongs to.
type LedgerInfoRepository interface {
	GetChainID(ctx context.Context) (*uint64, error)
	Insert(ctx context.Context, chainID uint64) error
}
