package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/paylink/paylink-api/internal/domain/ledger"
	"github.com/paylink/paylink-api/internal/domain/payid"
	"github.com/paylink/paylink-api/internal/domain/referral"
	"github.com/paylink/paylink-api/internal/domain/user"
	"github.com/paylink/paylink-api/internal/domain/wallet"
	"github.com/paylink/paylink-api/internal/domain/withdrawal"
)

// Notifier receives disposition outcomes after they are committed.
type Notifier interface {
	NotifyDecision(ctx context.Context, txn *ledger.Transaction)
}

// Config holds disposition policy knobs
type Config struct {
	// ReferralReward is credited to the referrer when a referred
	// user's activation is approved.
	ReferralReward int64
}

// Service is the single gateway through which pending transactions are
// decided. A decision and its side effects commit in one database
// transaction; effects run only when the row actually flips, so a
// replayed or racing decision settles exactly once.
type Service struct {
	ledgerRepo     *ledger.Repository
	walletRepo     *wallet.Repository
	walletSvc      *wallet.Service
	payidRepo      *payid.Repository
	referralSvc    *referral.Service
	referralRepo   *referral.Repository
	withdrawalRepo *withdrawal.Repository
	userRepo       user.Repository
	notifier       Notifier
	cfg            Config
}

func NewService(
	ledgerRepo *ledger.Repository,
	walletRepo *wallet.Repository,
	walletSvc *wallet.Service,
	payidRepo *payid.Repository,
	referralSvc *referral.Service,
	referralRepo *referral.Repository,
	withdrawalRepo *withdrawal.Repository,
	userRepo user.Repository,
	notifier Notifier,
	cfg Config,
) *Service {
	return &Service{
		ledgerRepo:     ledgerRepo,
		walletRepo:     walletRepo,
		walletSvc:      walletSvc,
		payidRepo:      payidRepo,
		referralSvc:    referralSvc,
		referralRepo:   referralRepo,
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		cfg:            cfg,
	}
}

// Approve moves a pending transaction to approved and applies its
// settlement effects. Approving an already-approved transaction is a
// no-op that returns the settled row; approving a rejected one fails.
func (s *Service) Approve(ctx context.Context, txnID uuid.UUID) (*ledger.Transaction, error) {
	return s.decide(ctx, txnID, ledger.StatusApproved)
}

// Reject moves a pending transaction to rejected and unwinds anything
// that was reserved at submission.
func (s *Service) Reject(ctx context.Context, txnID uuid.UUID) (*ledger.Transaction, error) {
	return s.decide(ctx, txnID, ledger.StatusRejected)
}

func (s *Service) decide(ctx context.Context, txnID uuid.UUID, to ledger.Status) (*ledger.Transaction, error) {
	var decided *ledger.Transaction

	err := s.ledgerRepo.InTx(ctx, func(tx *sqlx.Tx) error {
		txn, err := s.ledgerRepo.LockByID(ctx, tx, txnID)
		if err != nil {
			return err
		}

		if txn.Status.Terminal() {
			// Replay of the same decision returns the settled
			// state; a conflicting decision is refused.
			if txn.Status == to {
				decided = txn
				return nil
			}
			return ledger.ErrAlreadyDecided
		}

		flipped, err := s.ledgerRepo.DecideTx(ctx, tx, txnID, to)
		if err != nil {
			return err
		}
		if !flipped {
			return ledger.ErrAlreadyDecided
		}

		switch to {
		case ledger.StatusApproved:
			err = s.applyApproval(ctx, tx, txn)
		case ledger.StatusRejected:
			err = s.applyRejection(ctx, tx, txn)
		}
		if err != nil {
			return err
		}

		decided, err = s.ledgerRepo.LockByID(ctx, tx, txnID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.walletSvc.Invalidate(ctx, decided.UserID)
	if s.notifier != nil {
		s.notifier.NotifyDecision(ctx, decided)
	}
	log.Info().
		Str("transaction_id", txnID.String()).
		Str("tx_number", decided.Number).
		Str("kind", string(decided.Kind)).
		Str("status", string(decided.Status)).
		Msg("transaction decided")

	return decided, nil
}

func (s *Service) applyApproval(ctx context.Context, tx *sqlx.Tx, txn *ledger.Transaction) error {
	switch txn.Kind {
	case ledger.KindPurchase:
		// Funds were debited at submission; approval only confirms
		// fulfilment.
		return nil

	case ledger.KindActivation:
		if err := s.payidRepo.ActivateTx(ctx, tx, txn.UserID); err != nil {
			return err
		}
		referrerID, ok, err := s.userRepo.GetReferrer(ctx, txn.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		_, err = s.referralSvc.RecordQualifyingEventTx(ctx, tx, referrerID, txn.UserID, txn.ID, s.cfg.ReferralReward)
		return err

	case ledger.KindUpgrade:
		if !txn.ReferenceID.Valid {
			return fmt.Errorf("upgrade transaction %s has no level reference", txn.ID)
		}
		return s.userRepo.SetLevelTx(ctx, tx, txn.UserID, txn.ReferenceID.String)

	case ledger.KindWithdrawal:
		req, err := s.withdrawalRepo.GetByTransactionTx(ctx, tx, txn.ID)
		if err != nil {
			return err
		}
		_, err = s.withdrawalRepo.SetStatusTx(ctx, tx, req.ID, withdrawal.StatusPaid)
		return err
	}
	return fmt.Errorf("unknown transaction kind %q", txn.Kind)
}

func (s *Service) applyRejection(ctx context.Context, tx *sqlx.Tx, txn *ledger.Transaction) error {
	switch txn.Kind {
	case ledger.KindPurchase:
		ref := fmt.Sprintf("refund:%s", txn.ID)
		return s.walletRepo.CreditTx(ctx, tx, txn.UserID, txn.Amount, wallet.EntryRefund, ref)

	case ledger.KindActivation:
		// Free the claimed code so the user can register again.
		return s.payidRepo.ReleaseTx(ctx, tx, txn.UserID)

	case ledger.KindUpgrade:
		// Nothing was reserved; the user paid externally and the
		// admin simply declined the evidence.
		return nil

	case ledger.KindWithdrawal:
		req, err := s.withdrawalRepo.GetByTransactionTx(ctx, tx, txn.ID)
		if err != nil {
			return err
		}
		if _, err := s.withdrawalRepo.SetStatusTx(ctx, tx, req.ID, withdrawal.StatusRejected); err != nil {
			return err
		}
		switch req.Source {
		case withdrawal.SourceWallet:
			ref := fmt.Sprintf("refund:%s", req.ID)
			return s.walletRepo.CreditTx(ctx, tx, txn.UserID, req.Amount, wallet.EntryRefund, ref)
		case withdrawal.SourceReward:
			return s.referralRepo.RestoreTx(ctx, tx, req.ID)
		}
		return fmt.Errorf("unknown withdrawal source %q", req.Source)
	}
	return fmt.Errorf("unknown transaction kind %q", txn.Kind)
}

// ListPending returns the admin review queue, oldest first.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*ledger.Transaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.ledgerRepo.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.CountPending(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
