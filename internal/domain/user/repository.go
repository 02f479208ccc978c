package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines user data access
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetReferrer(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error)

	// Level catalog
	GetLevel(ctx context.Context, key string) (*Level, error)
	ListLevels(ctx context.Context) ([]*Level, error)

	// SetLevelTx applies a tier change inside the caller's transaction
	// so it commits together with the disposition that caused it.
	SetLevelTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, levelKey string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, phone, role, level_key, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Phone,
		user.Role,
		user.LevelKey,
		user.ReferredBy,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetReferrer returns the referring user, if any
func (r *repository) GetReferrer(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	var referredBy uuid.NullUUID
	err := r.db.GetContext(ctx, &referredBy, `SELECT referred_by FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, false, ErrUserNotFound
		}
		return uuid.Nil, false, err
	}
	if !referredBy.Valid {
		return uuid.Nil, false, nil
	}
	return referredBy.UUID, true, nil
}

func (r *repository) GetLevel(ctx context.Context, key string) (*Level, error) {
	var l Level
	err := r.db.GetContext(ctx, &l, `SELECT * FROM levels WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownLevel
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) ListLevels(ctx context.Context) ([]*Level, error) {
	var levels []*Level
	err := r.db.SelectContext(ctx, &levels, `SELECT * FROM levels ORDER BY rank`)
	return levels, err
}

func (r *repository) SetLevelTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, levelKey string) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE users SET level_key = $2, updated_at = now() WHERE id = $1
	`, id, levelKey)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
