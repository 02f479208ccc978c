package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Service struct {
	repo  *Repository
	cache *BalanceCache
}

func NewService(repo *Repository, cache *BalanceCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// GetBalance serves display reads through the advisory cache.
// Stale values are acceptable here; spend admission never uses this path.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if balance, ok := s.cache.Get(ctx, userID); ok {
		return balance, nil
	}

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, userID, balance)
	return balance, nil
}

// Credit applies a credit and invalidates the display cache.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount int64, entryType EntryType, referenceID string) error {
	if err := s.repo.Credit(ctx, userID, amount, entryType, referenceID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Str("reference_id", referenceID).Msg("wallet credit applied")
	return nil
}

// Debit applies a debit and invalidates the display cache.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount int64, entryType EntryType, referenceID string) error {
	if err := s.repo.Debit(ctx, userID, amount, entryType, referenceID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Str("reference_id", referenceID).Msg("wallet debit applied")
	return nil
}

// Invalidate drops the cached balance; called by collaborators that
// mutate the wallet inside their own transactions.
func (s *Service) Invalidate(ctx context.Context, userID uuid.UUID) {
	s.cache.Invalidate(ctx, userID)
}

// ListEntries returns recent balance mutations for display.
func (s *Service) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListEntries(ctx, userID, limit, offset)
}
