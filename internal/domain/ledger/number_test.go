package ledger

import (
	"regexp"
	"testing"
)

func TestGenerateNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^TXN-\d{8}-[23456789ABCDEFGHJKLMNPQRSTUVWXYZ]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := GenerateNumber()
		if !pattern.MatchString(n) {
			t.Fatalf("bad number format: %q", n)
		}
		if seen[n] {
			t.Fatalf("duplicate number in small sample: %q", n)
		}
		seen[n] = true
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
	if !StatusApproved.Terminal() {
		t.Fatal("approved must be terminal")
	}
	if !StatusRejected.Terminal() {
		t.Fatal("rejected must be terminal")
	}
}
