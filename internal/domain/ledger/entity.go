package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a monetary intent
type Kind string

const (
	KindPurchase   Kind = "purchase"
	KindActivation Kind = "activation"
	KindUpgrade    Kind = "upgrade"
	KindWithdrawal Kind = "withdrawal"
)

// Status is the single source of truth for a transaction's lifecycle.
// Pending may move to exactly one of approved or rejected, once.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status can no longer change
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// JSONRawMessage handles NULL json fields from DB
type JSONRawMessage []byte

func (j *JSONRawMessage) Scan(src any) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", src)
	}
	return nil
}

func (j JSONRawMessage) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// Transaction is a recorded monetary intent. Rows are never deleted;
// once decided, only the viewed flag may change.
type Transaction struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Number      string         `db:"number" json:"number"`
	UserID      uuid.UUID      `db:"user_id" json:"user_id"`
	Amount      int64          `db:"amount" json:"amount"`
	Kind        Kind           `db:"kind" json:"kind"`
	Status      Status         `db:"status" json:"status"`
	EvidenceURL sql.NullString `db:"evidence_url" json:"evidence_url,omitempty"`
	ReferenceID sql.NullString `db:"reference_id" json:"reference_id,omitempty"`
	Meta        JSONRawMessage `db:"meta" json:"meta,omitempty"`
	Viewed      bool           `db:"viewed" json:"viewed"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	DecidedAt   sql.NullTime   `db:"decided_at" json:"decided_at,omitempty"`
}

// Approved is a derived view; the status enum is authoritative
func (t *Transaction) Approved() bool {
	return t.Status == StatusApproved
}
