package ledger

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ListForUser returns one page of the user's transactions plus the
// total count for pagination meta.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	txs, err := s.repo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// Get returns a transaction, enforcing ownership.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrNotOwner
	}
	return t, nil
}

// MarkViewed flags all the user's unseen transactions.
func (s *Service) MarkViewed(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkViewed(ctx, userID)
}

// UnviewedCount returns how many transactions the user has not seen.
func (s *Service) UnviewedCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnviewedCount(ctx, userID)
}
