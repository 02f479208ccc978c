package evidence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/paylink/paylink-api/internal/pkg/imaging"
	"github.com/paylink/paylink-api/internal/pkg/storage"
)

type Service struct {
	repo      *Repository
	store     storage.Storage
	processor *imaging.Processor
}

func NewService(repo *Repository, store storage.Storage, processor *imaging.Processor) *Service {
	return &Service{repo: repo, store: store, processor: processor}
}

// Upload normalizes a proof screenshot and stages it. The file is not
// tied to anything yet; transaction creation commits it.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, reader io.Reader) (*File, string, error) {
	normalized, err := s.processor.Normalize(reader)
	if err != nil {
		return nil, "", ErrInvalidImage
	}

	key := fmt.Sprintf("evidence/%s.jpg", uuid.New())
	if err := s.store.Put(ctx, key, bytes.NewReader(normalized.Data), normalized.ContentType); err != nil {
		return nil, "", err
	}

	f := &File{Key: key, UserID: userID}
	if err := s.repo.Create(ctx, f); err != nil {
		// Row insert failed after the object landed; remove the object so
		// the orphan does not outlive this request.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("orphan evidence object left behind")
		}
		return nil, "", err
	}

	log.Info().Str("user_id", userID.String()).Str("key", key).Msg("evidence staged")
	return f, s.store.URL(key), nil
}

// CommitTx marks the file referenced inside the caller's unit and
// returns its public URL for the transaction row.
func (s *Service) CommitTx(ctx context.Context, tx *sqlx.Tx, key string, userID uuid.UUID) (string, error) {
	if err := s.repo.CommitTx(ctx, tx, key, userID); err != nil {
		return "", err
	}
	return s.store.URL(key), nil
}

// SweepOrphans deletes staged files never committed within maxAge.
// Reconciliation for the upload-then-crash window.
func (s *Service) SweepOrphans(ctx context.Context, maxAge time.Duration) (int, error) {
	files, err := s.repo.ListStaleUncommitted(ctx, time.Now().Add(-maxAge), 100)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if err := s.store.Delete(ctx, f.Key); err != nil {
			log.Warn().Err(err).Str("key", f.Key).Msg("failed to delete orphan evidence object")
			continue
		}
		if err := s.repo.Delete(ctx, f.Key); err != nil {
			log.Warn().Err(err).Str("key", f.Key).Msg("failed to delete orphan evidence row")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("orphan evidence swept")
	}
	return removed, nil
}
