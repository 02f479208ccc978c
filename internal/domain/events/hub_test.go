package events_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/paylink/paylink-api/internal/domain/events"
	"github.com/paylink/paylink-api/internal/domain/ledger"
)

// Fan-out racing register/unregister churn on the same user; run with
// the race detector to catch unsynchronized map access.
func TestHubFanOutUnderChurn(t *testing.T) {
	hub := events.NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	userID := uuid.New()
	txn := &ledger.Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Number: "TXN-20260901-W7XK2MQP",
		Kind:   ledger.KindPurchase,
		Status: ledger.StatusApproved,
		Amount: 4000,
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				conn := &events.Connection{UserID: userID, Send: make(chan []byte, 8)}
				hub.Register(conn)
				hub.NotifyDecision(context.Background(), txn)
				hub.Unregister(conn)
			}
		}()
	}
	wg.Wait()

	// The last unregister handoff may still be draining in Run.
	deadline := time.Now().Add(time.Second)
	for hub.ConnectionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := hub.ConnectionCount(); n != 0 {
		t.Fatalf("expected all connections unregistered, got %d", n)
	}
}
