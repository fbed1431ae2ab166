package wallet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheEntry is one balance lookup. Generation is the invalidation counter
// seen at lookup time and must be handed back to Fill.
type CacheEntry struct {
	Balance    int64
	Hit        bool
	Generation int64
}

// BalanceCache is a read-through copy of users.money_balance. The database
// stays authoritative. Every committed mutation bumps the owner's generation
// and drops the entry; a Fill carrying an older generation is discarded, so a
// reader that loaded the balance before a concurrent write cannot put it back.
type BalanceCache interface {
	Get(ctx context.Context, userID int) (CacheEntry, error)
	Fill(ctx context.Context, userID int, balance, generation int64) error
	Invalidate(ctx context.Context, userID int) error
}

// fillScript writes KEYS[1] only while KEYS[2] still equals ARGV[1].
// A missing generation counts as 0.
const fillScript = `
local gen = tonumber(redis.call('GET', KEYS[2]) or '0')
if gen ~= tonumber(ARGV[1]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

type RedisBalanceCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisBalanceCache(client redis.Cmdable, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{client: client, ttl: ttl}
}

func balanceKey(userID int) string {
	return fmt.Sprintf("wallet:balance:%d", userID)
}

func generationKey(userID int) string {
	return fmt.Sprintf("wallet:balance:%d:gen", userID)
}

func (c *RedisBalanceCache) Get(ctx context.Context, userID int) (CacheEntry, error) {
	vals, err := c.client.MGet(ctx, balanceKey(userID), generationKey(userID)).Result()
	if err != nil {
		return CacheEntry{}, err
	}

	var entry CacheEntry
	if s, ok := vals[1].(string); ok {
		if entry.Generation, err = strconv.ParseInt(s, 10, 64); err != nil {
			return CacheEntry{}, fmt.Errorf("corrupt cache generation for user %d: %w", userID, err)
		}
	}
	if s, ok := vals[0].(string); ok {
		if entry.Balance, err = strconv.ParseInt(s, 10, 64); err != nil {
			return CacheEntry{}, fmt.Errorf("corrupt cached balance for user %d: %w", userID, err)
		}
		entry.Hit = true
	}
	return entry, nil
}

func (c *RedisBalanceCache) Fill(ctx context.Context, userID int, balance, generation int64) error {
	return c.client.Eval(ctx, fillScript,
		[]string{balanceKey(userID), generationKey(userID)},
		generation, balance, c.ttl.Milliseconds(),
	).Err()
}

// Invalidate bumps the generation before deleting so an in-flight Fill sees
// the change.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, userID int) error {
	if err := c.client.Incr(ctx, generationKey(userID)).Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, balanceKey(userID)).Err()
}

// NopBalanceCache never holds anything.
type NopBalanceCache struct{}

func (NopBalanceCache) Get(context.Context, int) (CacheEntry, error)  { return CacheEntry{}, nil }
func (NopBalanceCache) Fill(context.Context, int, int64, int64) error { return nil }
func (NopBalanceCache) Invalidate(context.Context, int) error         { return nil }
