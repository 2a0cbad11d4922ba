package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type LedgerInfoRepo struct {
	db *DB
}

func NewLedgerInfoRepo(db *DB) *LedgerInfoRepo {
	return &LedgerInfoRepo{db: db}
}

// GetChainID returns the chain id this database was first indexed against,
// or nil when the database is fresh.
func (r *LedgerInfoRepo) GetChainID(ctx context.Context) (*uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var chainID uint64
	err := r.db.QueryRowContext(ctx, "SELECT chain_id FROM ledger_infos LIMIT 1").Scan(&chainID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	return &chainID, nil
}

func (r *LedgerInfoRepo) Insert(ctx context.Context, chainID uint64) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO ledger_infos (chain_id) VALUES ($1) ON CONFLICT DO NOTHING", chainID,
	)
	if err != nil {
		return fmt.Errorf("insert chain id: %w", err)
	}
	return nil
}
