package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockKeyPrefix    = "stock:"
	idempotencyKeyTTL = 24 * time.Hour
)

// Takes one unit only when the mirrored stock is positive. A missing key
// counts as empty so an unwarmed item never passes the gate.
var decrementStockScript = redis.NewScript(`
local key = KEYS[1]

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= 1 then
	redis.call('DECR', key)
	return 1
end

return 0
`)

// RedisAdapter mirrors per-item stock for the coordinator's fast-path gate
// and holds idempotency keys for retried requests.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func stockKey(itemID int64) string {
	return stockKeyPrefix + strconv.FormatInt(itemID, 10)
}

func (r *RedisAdapter) DecrementStock(ctx context.Context, itemID int64) (bool, error) {
	result, err := decrementStockScript.Run(ctx, r.client, []string{stockKey(itemID)}).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func (r *RedisAdapter) IncrementStock(ctx context.Context, itemID int64) error {
	return r.client.Incr(ctx, stockKey(itemID)).Err()
}

func (r *RedisAdapter) SetStock(ctx context.Context, itemID int64, quantity int) error {
	return r.client.Set(ctx, stockKey(itemID), quantity, 0).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
