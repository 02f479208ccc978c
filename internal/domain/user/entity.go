package user

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User represents a user account. Accounts are provisioned by the
// surrounding auth layer; the settlement core only reads identity,
// referral attribution and the tier level it mutates on upgrade.
type User struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	Email      string        `db:"email" json:"email"`
	Phone      string        `db:"phone" json:"phone"`
	Role       Role          `db:"role" json:"role"`
	LevelKey   string        `db:"level_key" json:"level_key"`
	ReferredBy uuid.NullUUID `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Level represents a tier in the upgrade catalog
type Level struct {
	Key   string `db:"key" json:"key"`
	Name  string `db:"name" json:"name"`
	Price int64  `db:"price" json:"price"`
	Rank  int    `db:"rank" json:"rank"`
}
