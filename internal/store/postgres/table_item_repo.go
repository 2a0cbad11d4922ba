package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/celochoi/aptos-indexer-processors/internal/domain/model"
	"github.com/celochoi/aptos-indexer-processors/internal/store"
)

type TableItemRepo struct {
	db *DB
}

func NewTableItemRepo(db *DB) *TableItemRepo {
	return &TableItemRepo{db: db}
}

// BulkUpsertTx writes table items as chunked multi-row inserts. A row keyed
// by (transaction_version, write_set_change_index) is immutable once written,
// so replayed batches skip conflicting rows.
func (r *TableItemRepo) BulkUpsertTx(ctx context.Context, tx *sql.Tx, items []*model.TableItem) error {
	for _, chunk := range store.Chunks(len(items), model.TableItemColumns) {
		rows := items[chunk[0]:chunk[1]]
		args := make([]any, 0, len(rows)*model.TableItemColumns)
		for _, it := range rows {
			args = append(args,
				it.TransactionVersion, it.WriteSetChangeIndex, it.TransactionBlockHeight,
				it.Handle, it.Key, nullableJSON(it.DecodedKey), nullableJSON(it.DecodedValue),
				it.IsDeleted, it.StateKeyHash,
			)
		}

		query := `
			INSERT INTO table_items (
				transaction_version, write_set_change_index, transaction_block_height,
				table_handle, key, decoded_key, decoded_value,
				is_deleted, state_key_hash
			) VALUES ` + placeholders(len(rows), model.TableItemColumns) + `
			ON CONFLICT (transaction_version, write_set_change_index) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("bulk upsert table items: %w", err)
		}
	}
	return nil
}

type TableMetadataRepo struct {
	db *DB
}

func NewTableMetadataRepo(db *DB) *TableMetadataRepo {
	return &TableMetadataRepo{db: db}
}

// BulkUpsertTx writes table metadata rows, which callers must pass sorted by
// handle so concurrent batches take row locks in the same order.
func (r *TableMetadataRepo) BulkUpsertTx(ctx context.Context, tx *sql.Tx, rows []*model.TableMetadata) error {
	for _, chunk := range store.Chunks(len(rows), model.TableMetadataColumns) {
		part := rows[chunk[0]:chunk[1]]
		args := make([]any, 0, len(part)*model.TableMetadataColumns)
		for _, m := range part {
			args = append(args, m.Handle, m.KeyType, m.ValueType)
		}

		query := `
			INSERT INTO table_metadata (handle, key_type, value_type)
			VALUES ` + placeholders(len(part), model.TableMetadataColumns) + `
			ON CONFLICT (handle) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("bulk upsert table metadata: %w", err)
		}
	}
	return nil
}
