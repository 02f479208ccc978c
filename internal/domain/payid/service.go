package payid

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// RegisterTx claims a pool code and creates the inactive registration
// inside the caller's transaction. Called by the activation request
// flow so the claim and the pending transaction commit together.
func (s *Service) RegisterTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, code string) (*Registration, error) {
	if err := s.repo.ClaimCodeTx(ctx, tx, code, userID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	last4 := code
	if len(code) > 4 {
		last4 = code[len(code)-4:]
	}

	reg := &Registration{
		UserID:    userID,
		CodeHash:  string(hash),
		CodeLast4: last4,
	}
	if err := s.repo.CreateRegistrationTx(ctx, tx, reg); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID.String()).Str("code_last4", last4).Msg("PAY-ID claimed, awaiting activation")
	return reg, nil
}

// Validate is the spend gate: the user must hold an active PAY-ID and
// the entered code must match. The three registry states are reported
// as distinct errors so callers display the right reason.
func (s *Service) Validate(ctx context.Context, userID uuid.UUID, enteredCode string) error {
	reg, err := s.repo.GetRegistration(ctx, userID)
	if err != nil {
		return err
	}

	switch reg.State() {
	case StateNotRegistered:
		return ErrNotRegistered
	case StateInactive:
		return ErrInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(reg.CodeHash), []byte(enteredCode)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrCodeMismatch
		}
		return err
	}
	return nil
}

// Status returns the user's registry state for display.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (State, *Registration, error) {
	reg, err := s.repo.GetRegistration(ctx, userID)
	if err != nil {
		return StateNotRegistered, nil, err
	}
	return reg.State(), reg, nil
}

// Provision adds codes to the pool (admin use).
func (s *Service) Provision(ctx context.Context, codes []string) (int, error) {
	added, err := s.repo.ProvisionCodes(ctx, codes)
	if err != nil {
		return added, err
	}
	log.Info().Int("added", added).Int("submitted", len(codes)).Msg("PAY-ID codes provisioned")
	return added, nil
}
