package evidence

import (
	"time"

	"github.com/google/uuid"
)

// File is a staged evidence artifact (bank-transfer screenshot).
// Committed flips when a transaction is created carrying the key;
// stale uncommitted files are orphans and get swept.
type File struct {
	Key       string    `db:"key" json:"key"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Committed bool      `db:"committed" json:"committed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
