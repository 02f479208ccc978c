package evidence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, f *File) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO evidence_files (key, user_id, committed)
		VALUES ($1, $2, false)
	`, f.Key, f.UserID)
	return err
}

func (r *Repository) Get(ctx context.Context, key string) (*File, error) {
	var f File
	err := r.db.GetContext(ctx, &f, `SELECT * FROM evidence_files WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// CommitTx marks a staged file as referenced by a transaction, inside
// the transaction-creation unit. Only the uploader may commit it.
func (r *Repository) CommitTx(ctx context.Context, tx *sqlx.Tx, key string, userID uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE evidence_files SET committed = true
		WHERE key = $1 AND user_id = $2
	`, key, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var ownerID uuid.UUID
		err := tx.GetContext(ctx, &ownerID, `
			SELECT user_id FROM evidence_files WHERE key = $1
		`, key)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrNotOwner
	}
	return nil
}

// ListStaleUncommitted returns orphan candidates for the sweep job.
func (r *Repository) ListStaleUncommitted(ctx context.Context, before time.Time, limit int) ([]*File, error) {
	var files []*File
	err := r.db.SelectContext(ctx, &files, `
		SELECT * FROM evidence_files
		WHERE committed = false AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`, before, limit)
	return files, err
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM evidence_files WHERE key = $1`, key)
	return err
}
