package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB

	// welcomeCredit is granted once, when the wallet row is first created.
	welcomeCredit int64
}

func NewRepository(db *sqlx.DB, welcomeCredit int64) *Repository {
	return &Repository{db: db, welcomeCredit: welcomeCredit}
}

// Ensure creates the wallet on first access, seeding the one-time
// welcome credit. Safe to call repeatedly and concurrently: the
// insert is conditional and the welcome entry rides the same tx.
func (r *Repository) Ensure(ctx context.Context, userID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.ensureTx(ctx, tx, userID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repository) ensureTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, r.welcomeCredit)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil // wallet already existed
	}

	if r.welcomeCredit > 0 {
		ref := fmt.Sprintf("welcome:%s", userID)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO wallet_entries (id, user_id, amount, type, reference_id)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), userID, r.welcomeCredit, EntryWelcome, ref)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetBalance reads the authoritative balance.
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.Ensure(ctx, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1`, userID)
	return balance, err
}

// ListEntries returns recent balance mutations, newest first.
func (r *Repository) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error) {
	var entries []*Entry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM wallet_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return entries, err
}

// DebitTx applies a debit inside the caller's transaction. The
// admission check and decrement are one conditional update, never a
// read followed by a write. A replayed reference with the same amount
// is a no-op; a different amount is a conflict.
func (r *Repository) DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, entryType EntryType, referenceID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if referenceID == "" {
		return ErrMissingReference
	}
	return r.applyTx(ctx, tx, userID, -amount, entryType, referenceID)
}

// CreditTx applies a credit inside the caller's transaction.
func (r *Repository) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, entryType EntryType, referenceID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if referenceID == "" {
		return ErrMissingReference
	}
	return r.applyTx(ctx, tx, userID, amount, entryType, referenceID)
}

// Debit runs DebitTx in its own transaction.
func (r *Repository) Debit(ctx context.Context, userID uuid.UUID, amount int64, entryType EntryType, referenceID string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		return r.DebitTx(ctx, tx, userID, amount, entryType, referenceID)
	})
}

// Credit runs CreditTx in its own transaction.
func (r *Repository) Credit(ctx context.Context, userID uuid.UUID, amount int64, entryType EntryType, referenceID string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		return r.CreditTx(ctx, tx, userID, amount, entryType, referenceID)
	})
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repository) applyTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, entryType EntryType, referenceID string) error {
	if err := r.ensureTx(ctx, tx, userID); err != nil {
		return err
	}

	// Lock the wallet row before the reference check. A concurrent
	// replay of the same reference waits here until the winner commits
	// and then sees the entry below instead of decrementing again.
	var balance int64
	if err := tx.GetContext(ctx, &balance, `
		SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE
	`, userID); err != nil {
		return err
	}

	existing, exists, err := r.entryAmountByRef(ctx, tx, userID, entryType, referenceID)
	if err != nil {
		return err
	}
	if exists {
		if existing != amount {
			return ErrReferenceConflict
		}
		return nil // already applied
	}

	var result sql.Result
	if amount < 0 {
		// Conditional decrement: admission check and mutation in one statement.
		result, err = tx.ExecContext(ctx, `
			UPDATE wallets
			SET balance = balance + $2, updated_at = now()
			WHERE user_id = $1 AND balance >= -$2
		`, userID, amount)
	} else {
		result, err = tx.ExecContext(ctx, `
			UPDATE wallets
			SET balance = balance + $2, updated_at = now()
			WHERE user_id = $1
		`, userID, amount)
	}
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInsufficientFunds
	}

	// A unique violation here means the entry landed through a path
	// not holding the row lock. The transaction is aborted at this
	// point, so the error must propagate and the unit roll back,
	// discarding the decrement above; a retry lands on the pre-check.
	return r.insertEntry(ctx, tx, userID, amount, entryType, referenceID)
}

func (r *Repository) entryAmountByRef(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, entryType EntryType, referenceID string) (int64, bool, error) {
	var amount int64
	err := tx.GetContext(ctx, &amount, `
		SELECT amount
		FROM wallet_entries
		WHERE user_id = $1 AND type = $2 AND reference_id = $3
		LIMIT 1
	`, userID, string(entryType), referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

func (r *Repository) insertEntry(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, entryType EntryType, referenceID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_entries (id, user_id, amount, type, reference_id)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), userID, amount, string(entryType), referenceID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}
