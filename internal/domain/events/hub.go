package events

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/paylink/paylink-api/internal/domain/ledger"
)

// EventType for WebSocket messages
type EventType string

const (
	EventTransactionDecided EventType = "transaction_decided"
	EventBalanceChanged     EventType = "balance_changed"
)

const decisionChannel = "wallet:decisions"

var (
	wsConnectionsGauge   = expvar.NewInt("websocket_connections")
	wsEventsSentTotal    = expvar.NewInt("websocket_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("websocket_events_dropped_total")
)

// Event is the wire shape pushed to connected clients.
type Event struct {
	Type        EventType      `json:"type"`
	Transaction map[string]any `json:"transaction,omitempty"`
}

type decisionMessage struct {
	UserID           string          `json:"user_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id"`
}

// Connection represents one WebSocket client
type Connection struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub fans disposition events out to a user's open connections. Events
// travel through Redis Pub/Sub so every server instance delivers to its
// own local clients; without Redis the hub degrades to single-instance
// local delivery.
type Hub struct {
	connections map[uuid.UUID]map[*Connection]bool
	redis       *redis.Client
	pubsub      *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx        context.Context
	cancel     context.CancelFunc
	instanceID string
}

func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  uuid.NewString(),
	}

	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, decisionChannel)
	}

	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.UserID] == nil {
				h.connections[conn.UserID] = make(map[*Connection]bool)
			}
			h.connections[conn.UserID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("user_id", conn.UserID.String()).Msg("User connected to WebSocket")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.UserID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.UserID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("User disconnected from WebSocket")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event decisionMessage
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			if event.SenderInstanceID == h.instanceID {
				continue
			}
			userID, err := uuid.Parse(event.UserID)
			if err != nil {
				continue
			}
			h.sendLocal(userID, []byte(event.Payload))
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// NotifyDecision pushes a disposition outcome to the transaction's
// owner on every server instance.
func (h *Hub) NotifyDecision(ctx context.Context, txn *ledger.Transaction) {
	event := Event{
		Type: EventTransactionDecided,
		Transaction: map[string]any{
			"id":     txn.ID,
			"number": txn.Number,
			"kind":   txn.Kind,
			"status": txn.Status,
			"amount": txn.Amount,
		},
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal WebSocket event")
		return
	}

	h.sendLocal(txn.UserID, data)

	if h.redis == nil {
		return
	}
	msg := decisionMessage{
		UserID:           txn.UserID.String(),
		Payload:          data,
		SenderInstanceID: h.instanceID,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := h.redis.Publish(ctx, decisionChannel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", decisionChannel).Msg("Redis publish failed")
	}
}

func (h *Hub) sendLocal(userID uuid.UUID, data []byte) {
	// Hold the read lock across the range; Run mutates the sub-map on
	// register/unregister and the sends never block.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections[userID] {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			// Buffer full, skip this message
			wsEventsDroppedTotal.Add(1)
			log.Warn().Str("user_id", userID.String()).Msg("WebSocket send buffer full")
		}
	}
}

// ConnectionCount returns number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
