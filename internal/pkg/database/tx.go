package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// WithTx runs fn inside a transaction, rolling back on error.
// Multi-table units (debit + ledger insert, disposition + settlement
// effect) go through here so they commit or fail as one.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
