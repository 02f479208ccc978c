package payid

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ProvisionCodes adds codes to the pool. Existing codes are skipped.
func (r *Repository) ProvisionCodes(ctx context.Context, codes []string) (int, error) {
	added := 0
	for _, code := range codes {
		result, err := r.db.ExecContext(ctx, `
			INSERT INTO payid_codes (code) VALUES ($1)
			ON CONFLICT (code) DO NOTHING
		`, code)
		if err != nil {
			return added, err
		}
		if rows, _ := result.RowsAffected(); rows == 1 {
			added++
		}
	}
	return added, nil
}

// ClaimCodeTx claims a pool code for a user inside the caller's unit.
// The conditional update is the uniqueness check: zero rows means the
// code is unknown or already claimed.
func (r *Repository) ClaimCodeTx(ctx context.Context, tx *sqlx.Tx, code string, userID uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE payid_codes SET claimed_by = $2
		WHERE code = $1 AND claimed_by IS NULL
	`, code, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM payid_codes WHERE code = $1)`, code); err != nil {
		return err
	}
	if !exists {
		return ErrUnknownCode
	}
	return ErrCodeTaken
}

// CreateRegistrationTx inserts the user's registration (inactive until
// the activation transaction is approved). The user_id primary key
// enforces at-most-one per user at the store, not in handler logic.
func (r *Repository) CreateRegistrationTx(ctx context.Context, tx *sqlx.Tx, reg *Registration) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payid_registrations (user_id, code_hash, code_last4, active)
		VALUES ($1, $2, $3, false)
	`, reg.UserID, reg.CodeHash, reg.CodeLast4)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// GetRegistration returns the user's registration, or nil if none.
func (r *Repository) GetRegistration(ctx context.Context, userID uuid.UUID) (*Registration, error) {
	var reg Registration
	err := r.db.GetContext(ctx, &reg, `SELECT * FROM payid_registrations WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

// ActivateTx flips the registration active inside the disposition
// unit. Activating an already-active registration is a no-op, which is
// what makes gateway retries safe.
func (r *Repository) ActivateTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE payid_registrations
		SET active = true, activated_at = COALESCE(activated_at, now())
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotRegistered
	}
	return nil
}

// ReleaseTx undoes a never-activated claim when the activation
// transaction is rejected or expires: the registration row goes away
// and the pool code becomes claimable again.
func (r *Repository) ReleaseTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM payid_registrations WHERE user_id = $1 AND active = false
	`, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil // already active or never registered; nothing to release
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payid_codes SET claimed_by = NULL WHERE claimed_by = $1
	`, userID)
	return err
}
