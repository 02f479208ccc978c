package wallet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const balanceCacheTTL = 30 * time.Second

// BalanceCache is a display-only read-through cache over the wallet
// balance. It is advisory: admission checks always hit Postgres with
// a conditional update and never consult this cache.
type BalanceCache struct {
	redis *redis.Client
}

func NewBalanceCache(redisClient *redis.Client) *BalanceCache {
	return &BalanceCache{redis: redisClient}
}

func balanceKey(userID uuid.UUID) string {
	return fmt.Sprintf("wallet:balance:%s", userID)
}

// Get returns the cached balance, if present
func (c *BalanceCache) Get(ctx context.Context, userID uuid.UUID) (int64, bool) {
	if c.redis == nil {
		return 0, false
	}
	val, err := c.redis.Get(ctx, balanceKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return balance, true
}

// Set caches a balance for display reads
func (c *BalanceCache) Set(ctx context.Context, userID uuid.UUID, balance int64) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, balanceKey(userID), balance, balanceCacheTTL).Err(); err != nil {
		log.Debug().Err(err).Str("user_id", userID.String()).Msg("balance cache set failed")
	}
}

// Invalidate drops the cached balance after any mutation
func (c *BalanceCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, balanceKey(userID)).Err(); err != nil {
		log.Debug().Err(err).Str("user_id", userID.String()).Msg("balance cache invalidate failed")
	}
}
