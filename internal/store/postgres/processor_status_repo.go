package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type ProcessorStatusRepo struct {
	db *DB
}

func NewProcessorStatusRepo(db *DB) *ProcessorStatusRepo {
	return &ProcessorStatusRepo{db: db}
}

// Upsert advances the checkpoint of one processor. GREATEST keeps the
// checkpoint monotonic even if batches commit out of order.
func (r *ProcessorStatusRepo) Upsert(ctx context.Context, processor string, lastSuccessVersion uint64, lastTxnTimestamp *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO processor_status (processor, last_success_version, last_updated, last_transaction_timestamp)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (processor) DO UPDATE SET
			last_success_version = GREATEST(processor_status.last_success_version, EXCLUDED.last_success_version),
			last_updated = EXCLUDED.last_updated,
			last_transaction_timestamp = COALESCE(EXCLUDED.last_transaction_timestamp, processor_status.last_transaction_timestamp)
	`, processor, lastSuccessVersion, lastTxnTimestamp)
	if err != nil {
		return fmt.Errorf("upsert processor status %s: %w", processor, err)
	}
	return nil
}

// GetLastSuccessVersion returns the stored checkpoint, or nil when the
// processor has never committed.
func (r *ProcessorStatusRepo) GetLastSuccessVersion(ctx context.Context, processor string) (*uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var version uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT last_success_version FROM processor_status WHERE processor = $1", processor,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get processor status %s: %w", processor, err)
	}
	return &version, nil
}
