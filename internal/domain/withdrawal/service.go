package withdrawal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/paylink/paylink-api/internal/domain/ledger"
	"github.com/paylink/paylink-api/internal/domain/referral"
	"github.com/paylink/paylink-api/internal/domain/wallet"
)

// Config holds withdrawal policy knobs
type Config struct {
	// RewardFloor is the minimum amount for a referrer's first
	// reward-balance withdrawal.
	RewardFloor int64
}

type Service struct {
	repo         *Repository
	ledgerRepo   *ledger.Repository
	walletRepo   *wallet.Repository
	walletSvc    *wallet.Service
	referralRepo *referral.Repository
	cfg          Config
}

func NewService(repo *Repository, ledgerRepo *ledger.Repository, walletRepo *wallet.Repository, walletSvc *wallet.Service, referralRepo *referral.Repository, cfg Config) *Service {
	return &Service{
		repo:         repo,
		ledgerRepo:   ledgerRepo,
		walletRepo:   walletRepo,
		walletSvc:    walletSvc,
		referralRepo: referralRepo,
		cfg:          cfg,
	}
}

// SubmitInput carries a validated withdrawal submission
type SubmitInput struct {
	UserID        uuid.UUID
	Amount        int64
	Source        Source
	BankName      string
	AccountNumber string
	AccountName   string
}

// Submit debits the source balance and enqueues the request, all in
// one unit. Debit-at-submission is deliberate: a user cannot stack
// requests that jointly overdraw a balance, and rejection credits the
// amount back.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Request, error) {
	if in.Amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}
	if in.Source != SourceWallet && in.Source != SourceReward {
		return nil, ErrInvalidSource
	}

	meta, _ := json.Marshal(map[string]string{
		"bank_name":      in.BankName,
		"account_number": in.AccountNumber,
		"account_name":   in.AccountName,
		"source":         string(in.Source),
	})

	req := &Request{
		ID:            uuid.New(),
		UserID:        in.UserID,
		Amount:        in.Amount,
		Source:        in.Source,
		BankName:      in.BankName,
		AccountNumber: in.AccountNumber,
		AccountName:   in.AccountName,
		Status:        StatusPending,
	}

	txn := &ledger.Transaction{
		ID:     uuid.New(),
		UserID: in.UserID,
		Amount: in.Amount,
		Kind:   ledger.KindWithdrawal,
		Status: ledger.StatusPending,
		Meta:   meta,
	}
	req.TransactionID = txn.ID

	err := s.ledgerRepo.InTx(ctx, func(tx *sqlx.Tx) error {
		switch in.Source {
		case SourceWallet:
			ref := fmt.Sprintf("withdrawal:%s", req.ID)
			if err := s.walletRepo.DebitTx(ctx, tx, in.UserID, in.Amount, wallet.EntryWithdrawal, ref); err != nil {
				return err
			}
		case SourceReward:
			consumed, err := s.referralRepo.HasConsumedTx(ctx, tx, in.UserID)
			if err != nil {
				return err
			}
			if !consumed && in.Amount < s.cfg.RewardFloor {
				return ErrBelowMinimum
			}
			if err := s.referralRepo.ConsumeTx(ctx, tx, in.UserID, in.Amount, req.ID); err != nil {
				return err
			}
		}

		if err := s.ledgerRepo.CreateTx(ctx, tx, txn); err != nil {
			return err
		}
		return s.repo.CreateTx(ctx, tx, req)
	})
	if err != nil {
		return nil, err
	}

	s.walletSvc.Invalidate(ctx, in.UserID)
	log.Info().
		Str("user_id", in.UserID.String()).
		Str("withdrawal_id", req.ID.String()).
		Str("tx_number", txn.Number).
		Int64("amount", in.Amount).
		Str("source", string(in.Source)).
		Msg("withdrawal submitted")

	return req, nil
}

// ListForUser returns the user's withdrawal history.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
