package purchase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/paylink/paylink-api/internal/domain/evidence"
	"github.com/paylink/paylink-api/internal/domain/ledger"
	"github.com/paylink/paylink-api/internal/domain/payid"
	"github.com/paylink/paylink-api/internal/domain/user"
	"github.com/paylink/paylink-api/internal/domain/wallet"
)

// Config holds purchase policy knobs
type Config struct {
	// ActivationFee is the manual bank-transfer amount expected for a
	// PAY-ID activation.
	ActivationFee int64
}

type Service struct {
	ledgerRepo  *ledger.Repository
	walletRepo  *wallet.Repository
	walletSvc   *wallet.Service
	payidSvc    *payid.Service
	evidenceSvc *evidence.Service
	userRepo    user.Repository
	cfg         Config
}

func NewService(ledgerRepo *ledger.Repository, walletRepo *wallet.Repository, walletSvc *wallet.Service, payidSvc *payid.Service, evidenceSvc *evidence.Service, userRepo user.Repository, cfg Config) *Service {
	return &Service{
		ledgerRepo:  ledgerRepo,
		walletRepo:  walletRepo,
		walletSvc:   walletSvc,
		payidSvc:    payidSvc,
		evidenceSvc: evidenceSvc,
		userRepo:    userRepo,
		cfg:         cfg,
	}
}

// Purchase settles a wallet-funded airtime/data intent. The PAY-ID
// gate runs first so no debit happens on a bad code; then the debit
// and the ledger record commit as one unit.
func (s *Service) Purchase(ctx context.Context, userID uuid.UUID, req PurchaseRequest) (*ledger.Transaction, error) {
	if err := s.payidSvc.Validate(ctx, userID, req.PayIDCode); err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(map[string]string{
		"kind":      req.Kind,
		"network":   req.Network,
		"phone":     req.Phone,
		"plan_code": req.PlanCode,
	})

	txn := &ledger.Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Amount: req.Amount,
		Kind:   ledger.KindPurchase,
		Status: ledger.StatusPending,
		Meta:   meta,
	}

	err := s.ledgerRepo.InTx(ctx, func(tx *sqlx.Tx) error {
		ref := fmt.Sprintf("purchase:%s", txn.ID)
		if err := s.walletRepo.DebitTx(ctx, tx, userID, req.Amount, wallet.EntryPurchase, ref); err != nil {
			return err
		}
		return s.ledgerRepo.CreateTx(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.walletSvc.Invalidate(ctx, userID)
	log.Info().
		Str("user_id", userID.String()).
		Str("tx_number", txn.Number).
		Str("kind", req.Kind).
		Int64("amount", req.Amount).
		Msg("purchase debited and recorded")

	return txn, nil
}

// RequestActivation stakes a PAY-ID pool code and records the pending
// activation intent carrying the bank-transfer evidence. No wallet
// debit: settlement is manual and applied only on admin approval.
func (s *Service) RequestActivation(ctx context.Context, userID uuid.UUID, req ActivationRequest) (*ledger.Transaction, error) {
	txn := &ledger.Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Amount: s.cfg.ActivationFee,
		Kind:   ledger.KindActivation,
		Status: ledger.StatusPending,
	}
	txn.ReferenceID.String = req.Code
	txn.ReferenceID.Valid = true

	err := s.ledgerRepo.InTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.payidSvc.RegisterTx(ctx, tx, userID, req.Code); err != nil {
			return err
		}

		url, err := s.evidenceSvc.CommitTx(ctx, tx, req.EvidenceKey, userID)
		if err != nil {
			return err
		}
		txn.EvidenceURL.String = url
		txn.EvidenceURL.Valid = true

		return s.ledgerRepo.CreateTx(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("tx_number", txn.Number).
		Msg("activation requested, awaiting disposition")
	return txn, nil
}

// RequestUpgrade records a pending tier-upgrade intent priced from the
// level catalog, carrying evidence of the manual transfer.
func (s *Service) RequestUpgrade(ctx context.Context, userID uuid.UUID, req UpgradeRequest) (*ledger.Transaction, error) {
	level, err := s.userRepo.GetLevel(ctx, req.LevelKey)
	if err != nil {
		return nil, err
	}

	txn := &ledger.Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Amount: level.Price,
		Kind:   ledger.KindUpgrade,
		Status: ledger.StatusPending,
	}
	txn.ReferenceID.String = level.Key
	txn.ReferenceID.Valid = true

	err = s.ledgerRepo.InTx(ctx, func(tx *sqlx.Tx) error {
		url, err := s.evidenceSvc.CommitTx(ctx, tx, req.EvidenceKey, userID)
		if err != nil {
			return err
		}
		txn.EvidenceURL.String = url
		txn.EvidenceURL.Valid = true

		return s.ledgerRepo.CreateTx(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("tx_number", txn.Number).
		Str("level", level.Key).
		Msg("upgrade requested, awaiting disposition")
	return txn, nil
}

// Levels exposes the upgrade catalog for display.
func (s *Service) Levels(ctx context.Context) ([]*user.Level, error) {
	return s.userRepo.ListLevels(ctx)
}
