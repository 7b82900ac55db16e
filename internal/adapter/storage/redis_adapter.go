package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

const (
	stockKeyPrefix       = "stock:"
	idempotencyKeyPrefix = "idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour
)

// reserveStockScript decrements every key by its amount, or touches nothing.
// Returns 0 on success, otherwise the 1-based index of the first short key.
var reserveStockScript = redis.NewScript(`
for i, key in ipairs(KEYS) do
	local current = redis.call('GET', key)
	if not current or tonumber(current) < tonumber(ARGV[i]) then
		return i
	end
end

for i, key in ipairs(KEYS) do
	redis.call('DECRBY', key, tonumber(ARGV[i]))
end

return 0
`)

var adjustStockScript = redis.NewScript(`
local key = KEYS[1]
local delta = tonumber(ARGV[1])

local current = tonumber(redis.call('GET', key) or '0')
if current + delta < 0 then
	return 0
end

redis.call('INCRBY', key, delta)
return 1
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func stockKey(itemID int64) string {
	return stockKeyPrefix + strconv.FormatInt(itemID, 10)
}

func (r *RedisAdapter) ReserveStock(ctx context.Context, lines []domain.SaleLine) (int, error) {
	if len(lines) == 0 {
		return -1, nil
	}

	keys := make([]string, len(lines))
	args := make([]any, len(lines))
	for i, l := range lines {
		keys[i] = stockKey(l.ItemID)
		args[i] = l.Amount
	}

	result, err := reserveStockScript.Run(ctx, r.client, keys, args...).Int()
	if err != nil {
		return -1, err
	}

	return result - 1, nil
}

func (r *RedisAdapter) ReleaseStock(ctx context.Context, lines []domain.SaleLine) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, l := range lines {
			pipe.IncrBy(ctx, stockKey(l.ItemID), int64(l.Amount))
		}
		return nil
	})
	return err
}

func (r *RedisAdapter) AdjustStock(ctx context.Context, itemID int64, delta int) (bool, error) {
	result, err := adjustStockScript.Run(ctx, r.client, []string{stockKey(itemID)}, delta).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *RedisAdapter) GetStock(ctx context.Context, itemID int64) (int, bool, error) {
	qty, err := r.client.Get(ctx, stockKey(itemID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return qty, true, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, itemID int64, quantity int) error {
	return r.client.Set(ctx, stockKey(itemID), quantity, 0).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ClearIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
