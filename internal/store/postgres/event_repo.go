package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/celochoi/aptos-indexer-processors/internal/domain/model"
	"github.com/celochoi/aptos-indexer-processors/internal/store"
)

type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// BulkUpsertTx writes events as chunked multi-row inserts. The event
// identity (account_address, creation_number, sequence_number) is stable
// across replays, so conflicts are dropped.
func (r *EventRepo) BulkUpsertTx(ctx context.Context, tx *sql.Tx, events []*model.Event) error {
	for _, chunk := range store.Chunks(len(events), model.EventColumns) {
		rows := events[chunk[0]:chunk[1]]
		args := make([]any, 0, len(rows)*model.EventColumns)
		for _, e := range rows {
			args = append(args,
				e.TransactionVersion, e.EventIndex, e.AccountAddress,
				e.CreationNumber, e.SequenceNumber, e.TransactionBlockHeight,
				e.Type, nullableJSON(e.Data), e.IndexedType,
			)
		}

		query := `
			INSERT INTO events (
				transaction_version, event_index, account_address,
				creation_number, sequence_number, transaction_block_height,
				type, data, indexed_type
			) VALUES ` + placeholders(len(rows), model.EventColumns) + `
			ON CONFLICT (account_address, creation_number, sequence_number) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("bulk upsert events: %w", err)
		}
	}
	return nil
}
