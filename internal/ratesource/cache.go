package ratesource

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const cacheKeyPrefix = "rate:v1:"

// Cache wraps a Source with a redis cache so repeated lookups for the same
// pair within the TTL do not hit the underlying source. Cache failures fall
// through to the source: the cache can only make lookups cheaper, never
// break them.
type Cache struct {
	source Source
	client *redis.Client
	ttl    time.Duration
}

// NewCache returns a Cache over source backed by the given redis client.
func NewCache(source Source, client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		client: client,
		ttl:    ttl,
	}
}

// Rate resolves the pair from the cache, falling back to the wrapped source
// and storing its answer.
func (c *Cache) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	key := fmt.Sprintf("%s%s:%s", cacheKeyPrefix, from, to)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		rate, perr := decimal.NewFromString(cached)
		if perr == nil {
			return rate, nil
		}

		l.Warn().Str("key", key).Str("value", cached).Msg("dropping unparseable cached rate")
	} else if err != redis.Nil {
		l.Warn().Err(err).Str("key", key).Msg("rate cache lookup failed")
	}

	rate, err := c.source.Rate(ctx, from, to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if err := c.client.Set(ctx, key, rate.String(), c.ttl).Err(); err != nil {
		l.Warn().Err(err).Str("key", key).Msg("rate cache store failed")
	}

	return rate, nil
}
