package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/paylink/paylink-api/internal/pkg/database"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InTx runs fn in a transaction on the ledger's database handle.
// Collaborators compose debits, inserts and settlement effects here.
func (r *Repository) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return database.WithTx(ctx, r.db, fn)
}

// CreateTx inserts a transaction inside the caller's unit. Status and
// number must already be set; rows always start life here.
func (r *Repository) CreateTx(ctx context.Context, tx *sqlx.Tx, t *Transaction) error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Number == "" {
		t.Number = GenerateNumber()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, number, user_id, amount, kind, status, evidence_url, reference_id, meta, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		t.ID,
		t.Number,
		t.UserID,
		t.Amount,
		t.Kind,
		t.Status,
		t.EvidenceURL,
		t.ReferenceID,
		t.Meta,
		t.DecidedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "transactions_number_key" {
			return ErrDuplicateNumber
		}
		return err
	}
	return nil
}

// Create inserts a transaction in its own unit.
func (r *Repository) Create(ctx context.Context, t *Transaction) error {
	return r.InTx(ctx, func(tx *sqlx.Tx) error {
		return r.CreateTx(ctx, tx, t)
	})
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var t Transaction
	err := r.db.GetContext(ctx, &t, `SELECT * FROM transactions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// LockByID reads a transaction FOR UPDATE inside a disposition unit,
// serializing concurrent admins on the same row.
func (r *Repository) LockByID(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Transaction, error) {
	var t Transaction
	err := tx.GetContext(ctx, &t, `SELECT * FROM transactions WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// DecideTx moves a pending transaction to a terminal state. The WHERE
// clause is the state machine: zero rows means the row was already
// decided and the caller must treat the call as a no-op.
func (r *Repository) DecideTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, to Status) (bool, error) {
	if !to.Terminal() {
		return false, ErrAlreadyDecided
	}
	result, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, decided_at = now()
		WHERE id = $1 AND status = 'pending'
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

// ListByUser returns a page of the user's transactions, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error) {
	var txs []*Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT * FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return txs, err
}

func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID)
	return count, err
}

// MarkViewed flags all of the user's transactions as seen.
func (r *Repository) MarkViewed(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET viewed = true WHERE user_id = $1 AND viewed = false
	`, userID)
	return err
}

func (r *Repository) UnviewedCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND viewed = false
	`, userID)
	return count, err
}

// ListPending returns the admin review queue, oldest first.
func (r *Repository) ListPending(ctx context.Context, limit, offset int) ([]*Transaction, error) {
	var txs []*Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT * FROM transactions
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return txs, err
}

func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM transactions WHERE status = 'pending'`)
	return count, err
}

// ListStalePending returns pending manually-settled transactions older
// than the cutoff; the sweeper rejects them through the gateway.
func (r *Repository) ListStalePending(ctx context.Context, kinds []Kind, before time.Time, limit int) ([]*Transaction, error) {
	kindStrs := make([]string, len(kinds))
	for i, k := range kinds {
		kindStrs[i] = string(k)
	}

	var txs []*Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT * FROM transactions
		WHERE status = 'pending' AND kind = ANY($1) AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`, pq.Array(kindStrs), before, limit)
	return txs, err
}
