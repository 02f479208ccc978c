package referral

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// RecordQualifyingEventTx accrues a reward for the referrer inside the
// disposition unit. Replays of the same triple are absorbed.
func (s *Service) RecordQualifyingEventTx(ctx context.Context, tx *sqlx.Tx, referrerID, referredID, transactionID uuid.UUID, amount int64) (*Reward, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	reward, created, err := s.repo.RecordTx(ctx, tx, &Reward{
		ReferrerID:    referrerID,
		ReferredID:    referredID,
		TransactionID: transactionID,
		Amount:        amount,
	})
	if err != nil {
		return nil, err
	}

	if created {
		log.Info().
			Str("referrer_id", referrerID.String()).
			Str("referred_id", referredID.String()).
			Str("transaction_id", transactionID.String()).
			Int64("amount", amount).
			Msg("referral reward accrued")
	}
	return reward, nil
}

// Accrue returns the referrer's spendable reward balance.
func (s *Service) Accrue(ctx context.Context, referrerID uuid.UUID) (int64, error) {
	return s.repo.PendingTotal(ctx, referrerID)
}

// ListRewards returns the referrer's reward history.
func (s *Service) ListRewards(ctx context.Context, referrerID uuid.UUID, limit, offset int) ([]*Reward, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByReferrer(ctx, referrerID, limit, offset)
}
