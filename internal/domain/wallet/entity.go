package wallet

import (
	"time"

	"github.com/google/uuid"
)

// EntryType tags a balance mutation. Together with (user_id,
// reference_id) it forms the idempotency key for replayed requests.
type EntryType string

const (
	EntryWelcome    EntryType = "welcome"
	EntryPurchase   EntryType = "purchase"
	EntryWithdrawal EntryType = "withdrawal"
	EntryRefund     EntryType = "refund"
	EntryReward     EntryType = "reward"
)

// Wallet is the single spendable balance owned by a user.
// Balance is whole Naira, never negative.
type Wallet struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Entry records one applied balance mutation. Amount is signed:
// negative for debits, positive for credits.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Amount      int64     `db:"amount" json:"amount"`
	Type        EntryType `db:"type" json:"type"`
	ReferenceID *string   `db:"reference_id" json:"reference_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
