package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "reports:pl:version"

// Cache stores profit-and-loss aggregates in Redis. Entries are keyed
// by a version counter plus the date range; invalidation bumps the
// version so stale entries simply expire.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, from, to time.Time) (ProfitAndLoss, bool) {
	if c == nil || c.client == nil {
		return ProfitAndLoss{}, false
	}
	key, err := c.key(ctx, from, to)
	if err != nil {
		return ProfitAndLoss{}, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return ProfitAndLoss{}, false
	}
	var pl ProfitAndLoss
	if err := json.Unmarshal(raw, &pl); err != nil {
		return ProfitAndLoss{}, false
	}
	return pl, true
}

func (c *Cache) Set(ctx context.Context, from, to time.Time, pl ProfitAndLoss) {
	if c == nil || c.client == nil {
		return
	}
	key, err := c.key(ctx, from, to)
	if err != nil {
		return
	}
	raw, err := json.Marshal(pl)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate bumps the version counter so every cached range goes
// stale at once. Called by the posting service after a commit.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func (c *Cache) key(ctx context.Context, from, to time.Time) (string, error) {
	version, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("reports:pl:%d:%s:%s", version, from.Format("2006-01-02"), to.Format("2006-01-02")), nil
}
