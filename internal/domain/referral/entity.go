package referral

import (
	"time"

	"github.com/google/uuid"
)

// RewardStatus tracks whether a reward is still spendable
type RewardStatus string

const (
	RewardPending RewardStatus = "pending"
	RewardPaid    RewardStatus = "paid"
)

// Reward is one referral accrual. The (referrer, referred,
// transaction) triple is unique: a qualifying event pays out once no
// matter how often the approval is replayed. ConsumedBy links a paid
// reward to the withdrawal that consumed it so a rejected withdrawal
// can restore it.
type Reward struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	ReferrerID    uuid.UUID     `db:"referrer_id" json:"referrer_id"`
	ReferredID    uuid.UUID     `db:"referred_id" json:"referred_id"`
	TransactionID uuid.UUID     `db:"transaction_id" json:"transaction_id"`
	Amount        int64         `db:"amount" json:"amount"`
	Status        RewardStatus  `db:"status" json:"status"`
	ConsumedBy    uuid.NullUUID `db:"consumed_by" json:"consumed_by,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}
