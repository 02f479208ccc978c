package referral

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

// RecordTx inserts a reward if none exists for the triple and returns
// the row that ended up in the table. The unique index, not the
// caller, decides replays: a second identical event returns the
// original row with the original amount.
func (r *Repository) RecordTx(ctx context.Context, tx *sqlx.Tx, reward *Reward) (*Reward, bool, error) {
	if reward.ID == uuid.Nil {
		reward.ID = uuid.New()
	}
	result, err := tx.ExecContext(ctx, `
		INSERT INTO referral_rewards (id, referrer_id, referred_id, transaction_id, amount, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		ON CONFLICT (referrer_id, referred_id, transaction_id) DO NOTHING
	`, reward.ID, reward.ReferrerID, reward.ReferredID, reward.TransactionID, reward.Amount)
	if err != nil {
		return nil, false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if rows == 1 {
		reward.Status = RewardPending
		return reward, true, nil
	}

	var existing Reward
	err = tx.GetContext(ctx, &existing, `
		SELECT * FROM referral_rewards
		WHERE referrer_id = $1 AND referred_id = $2 AND transaction_id = $3
	`, reward.ReferrerID, reward.ReferredID, reward.TransactionID)
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// PendingTotal sums the referrer's spendable reward balance.
func (r *Repository) PendingTotal(ctx context.Context, referrerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0) FROM referral_rewards
		WHERE referrer_id = $1 AND status = 'pending'
	`, referrerID)
	return total, err
}

// ListByReferrer returns the referrer's rewards, newest first.
func (r *Repository) ListByReferrer(ctx context.Context, referrerID uuid.UUID, limit, offset int) ([]*Reward, error) {
	var rewards []*Reward
	err := r.db.SelectContext(ctx, &rewards, `
		SELECT * FROM referral_rewards
		WHERE referrer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, referrerID, limit, offset)
	return rewards, err
}

// HasConsumedTx reports whether the referrer has ever completed a
// reward withdrawal. Drives the first-withdrawal floor.
func (r *Repository) HasConsumedTx(ctx context.Context, tx *sqlx.Tx, referrerID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM referral_rewards WHERE referrer_id = $1 AND status = 'paid'
		)
	`, referrerID)
	return exists, err
}

// ConsumeTx marks pending rewards paid, oldest first, until exactly
// amount is covered. Rows are locked FOR UPDATE so concurrent
// withdrawals cannot consume the same reward twice. The amount must
// align with whole reward rows.
func (r *Repository) ConsumeTx(ctx context.Context, tx *sqlx.Tx, referrerID uuid.UUID, amount int64, withdrawalID uuid.UUID) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	var rewards []*Reward
	err := tx.SelectContext(ctx, &rewards, `
		SELECT * FROM referral_rewards
		WHERE referrer_id = $1 AND status = 'pending'
		ORDER BY created_at ASC
		FOR UPDATE
	`, referrerID)
	if err != nil {
		return err
	}

	var covered int64
	var consume []uuid.UUID
	for _, rw := range rewards {
		if covered == amount {
			break
		}
		covered += rw.Amount
		consume = append(consume, rw.ID)
		if covered > amount {
			return ErrUnevenAmount
		}
	}
	if covered < amount {
		return ErrInsufficientRewardBalance
	}

	for _, id := range consume {
		if _, err := tx.ExecContext(ctx, `
			UPDATE referral_rewards SET status = 'paid', consumed_by = $2 WHERE id = $1
		`, id, withdrawalID); err != nil {
			return err
		}
	}
	return nil
}

// RestoreTx puts rewards consumed by a rejected withdrawal back into
// the pending balance.
func (r *Repository) RestoreTx(ctx context.Context, tx *sqlx.Tx, withdrawalID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE referral_rewards SET status = 'pending', consumed_by = NULL
		WHERE consumed_by = $1 AND status = 'paid'
	`, withdrawalID)
	return err
}

// GetByTransaction is a helper for sql.ErrNoRows-free lookups in tests
// and admin tooling.
func (r *Repository) GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*Reward, error) {
	var reward Reward
	err := r.db.GetContext(ctx, &reward, `
		SELECT * FROM referral_rewards WHERE transaction_id = $1
	`, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reward, nil
}
