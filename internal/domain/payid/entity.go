package payid

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// State describes what Validate can learn about a user's PAY-ID.
type State string

const (
	StateNotRegistered State = "not_registered"
	StateInactive      State = "inactive" // code claimed, activation fee not yet approved
	StateActive        State = "active"
)

// Code is a pre-provisioned entry in the PAY-ID pool. A code is
// claimed by at most one user and becomes spendable only after the
// activation transaction is approved.
type Code struct {
	Code      string        `db:"code" json:"code"`
	ClaimedBy uuid.NullUUID `db:"claimed_by" json:"claimed_by,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// Registration maps a user to their single PAY-ID. The code itself is
// stored bcrypt-hashed; only the last four characters are kept in the
// clear for display.
type Registration struct {
	UserID      uuid.UUID    `db:"user_id" json:"user_id"`
	CodeHash    string       `db:"code_hash" json:"-"`
	CodeLast4   string       `db:"code_last4" json:"code_last4"`
	Active      bool         `db:"active" json:"active"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	ActivatedAt sql.NullTime `db:"activated_at" json:"activated_at,omitempty"`
}

// State derives the registry state for a loaded registration
func (r *Registration) State() State {
	if r == nil {
		return StateNotRegistered
	}
	if !r.Active {
		return StateInactive
	}
	return StateActive
}
