package withdrawal

import (
	"time"

	"github.com/google/uuid"
)

// Source names the balance a withdrawal draws from
type Source string

const (
	SourceWallet Source = "wallet"
	SourceReward Source = "reward"
)

// Status of a withdrawal request. Funds are debited at submission, so
// pending means "debited, awaiting payout"; rejected means the debit
// was credited back.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRejected Status = "rejected"
)

// Request captures a cash-out intent to an external bank account. Each
// request is backed 1:1 by a ledger transaction that carries the
// admin-facing lifecycle.
type Request struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	TransactionID uuid.UUID `db:"transaction_id" json:"transaction_id"`
	Amount        int64     `db:"amount" json:"amount"`
	Source        Source    `db:"source" json:"source"`
	BankName      string    `db:"bank_name" json:"bank_name"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	AccountName   string    `db:"account_name" json:"account_name"`
	Status        Status    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
