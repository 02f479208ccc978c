package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/paylink/paylink-api/internal/domain/admin"
	"github.com/paylink/paylink-api/internal/domain/evidence"
	"github.com/paylink/paylink-api/internal/domain/ledger"
)

const staleBatchSize = 100

// Runner owns the background schedules: expiring stale pending
// transactions and sweeping uncommitted evidence uploads.
type Runner struct {
	cron          *cron.Cron
	ledgerRepo    *ledger.Repository
	adminSvc      *admin.Service
	evidenceSvc   *evidence.Service
	pendingExpiry time.Duration
	evidenceTTL   time.Duration
}

func NewRunner(ledgerRepo *ledger.Repository, adminSvc *admin.Service, evidenceSvc *evidence.Service, pendingExpiry, evidenceTTL time.Duration) *Runner {
	return &Runner{
		cron:          cron.New(),
		ledgerRepo:    ledgerRepo,
		adminSvc:      adminSvc,
		evidenceSvc:   evidenceSvc,
		pendingExpiry: pendingExpiry,
		evidenceTTL:   evidenceTTL,
	}
}

// Start registers the schedules and launches the cron loop.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc("0 * * * *", r.expireStalePending); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc("30 * * * *", r.sweepEvidence); err != nil {
		return err
	}
	r.cron.Start()
	log.Info().Msg("background jobs scheduled")
	return nil
}

// Stop halts the scheduler and waits for running jobs.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// expireStalePending rejects activation and upgrade requests that sat
// unreviewed past the expiry window. Rejection goes through the
// disposition gateway so the usual unwind effects apply. Purchases and
// withdrawals are excluded; money already moved for those and only a
// human should decide them.
func (r *Runner) expireStalePending() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-r.pendingExpiry)
	kinds := []ledger.Kind{ledger.KindActivation, ledger.KindUpgrade}

	stale, err := r.ledgerRepo.ListStalePending(ctx, kinds, cutoff, staleBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("stale pending scan failed")
		return
	}

	rejected := 0
	for _, txn := range stale {
		if _, err := r.adminSvc.Reject(ctx, txn.ID); err != nil {
			log.Error().Err(err).Str("transaction_id", txn.ID.String()).Msg("stale pending rejection failed")
			continue
		}
		rejected++
	}

	if rejected > 0 {
		log.Info().Int("count", rejected).Msg("stale pending transactions rejected")
	}
}

func (r *Runner) sweepEvidence() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := r.evidenceSvc.SweepOrphans(ctx, r.evidenceTTL)
	if err != nil {
		log.Error().Err(err).Msg("evidence sweep failed")
		return
	}
	if removed > 0 {
		log.Info().Int("count", removed).Msg("orphaned evidence uploads removed")
	}
}
