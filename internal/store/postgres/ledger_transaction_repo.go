package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/celochoi/aptos-indexer-processors/internal/domain/model"
	"github.com/celochoi/aptos-indexer-processors/internal/store"
)

type LedgerTransactionRepo struct {
	db *DB
}

func NewLedgerTransactionRepo(db *DB) *LedgerTransactionRepo {
	return &LedgerTransactionRepo{db: db}
}

// BulkUpsertTx writes transactions as chunked multi-row inserts. Version is
// the primary key and rows are immutable, so replays are dropped.
func (r *LedgerTransactionRepo) BulkUpsertTx(ctx context.Context, tx *sql.Tx, txns []*model.LedgerTransaction) error {
	for _, chunk := range store.Chunks(len(txns), model.LedgerTransactionColumns) {
		rows := txns[chunk[0]:chunk[1]]
		args := make([]any, 0, len(rows)*model.LedgerTransactionColumns)
		for _, t := range rows {
			args = append(args,
				t.Version, t.BlockHeight, t.Hash, t.Type, nullableJSON(t.Payload),
				t.StateChangeHash, t.EventRootHash, t.StateCheckpointHash,
				t.GasUsed, t.Success, t.VMStatus, t.AccumulatorRootHash,
				t.NumEvents, t.Epoch,
			)
		}

		query := `
			INSERT INTO ledger_transactions (
				version, block_height, hash, type, payload,
				state_change_hash, event_root_hash, state_checkpoint_hash,
				gas_used, success, vm_status, accumulator_root_hash,
				num_events, epoch
			) VALUES ` + placeholders(len(rows), model.LedgerTransactionColumns) + `
			ON CONFLICT (version) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("bulk upsert ledger transactions: %w", err)
		}
	}
	return nil
}

// nullableJSON maps an absent json value to SQL NULL instead of the empty
// string, which jsonb would reject.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
