package ledger

import (
	"crypto/rand"
	"fmt"
	"time"
)

// GenerateNumber produces the human-readable transaction reference,
// e.g. TXN-20250901-4K7QX2M9. Uniqueness is enforced by the database;
// the date segment keeps support lookups cheap.
func GenerateNumber() string {
	const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return fmt.Sprintf("TXN-%s-%s", time.Now().UTC().Format("20060102"), string(b))
}
