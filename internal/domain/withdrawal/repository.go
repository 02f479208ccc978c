package withdrawal

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts a request inside the submission unit so the row,
// the debit and the ledger transaction commit together.
func (r *Repository) CreateTx(ctx context.Context, tx *sqlx.Tx, req *Request) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = StatusPending
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO withdrawal_requests (id, user_id, transaction_id, amount, source, bank_name, account_number, account_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		req.ID,
		req.UserID,
		req.TransactionID,
		req.Amount,
		req.Source,
		req.BankName,
		req.AccountNumber,
		req.AccountName,
		req.Status,
	)
	return err
}

// GetByTransactionTx loads the request backing a ledger transaction
// inside the disposition unit.
func (r *Repository) GetByTransactionTx(ctx context.Context, tx *sqlx.Tx, transactionID uuid.UUID) (*Request, error) {
	var req Request
	err := tx.GetContext(ctx, &req, `
		SELECT * FROM withdrawal_requests WHERE transaction_id = $1
	`, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// SetStatusTx transitions a request out of pending. The conditional
// update mirrors the ledger state machine: a replay leaves the row
// unchanged.
func (r *Repository) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, to Status) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE withdrawal_requests SET status = $2 WHERE id = $1 AND status = 'pending'
	`, id, to)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// ListByUser returns the user's withdrawal history, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Request, error) {
	var reqs []*Request
	err := r.db.SelectContext(ctx, &reqs, `
		SELECT * FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return reqs, err
}
