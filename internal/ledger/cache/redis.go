package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kfrye1212/digitalpulse-tld/internal/ledger/models"
)

const resolveKeyPrefix = "resolve:"

// ResolveCache caches resolved domain records in Redis. Misses and Redis
// failures both fall through to the store; the cache is never authoritative.
type ResolveCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResolveCache(client *redis.Client, ttl time.Duration) *ResolveCache {
	return &ResolveCache{client: client, ttl: ttl}
}

func resolveKey(name, tld string) string {
	return resolveKeyPrefix + models.Normalize(name) + "." + models.Normalize(tld)
}

// Get returns the cached record, or (nil, nil) on a miss.
func (c *ResolveCache) Get(ctx context.Context, name, tld string) (*models.Domain, error) {
	raw, err := c.client.Get(ctx, resolveKey(name, tld)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d models.Domain
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Set stores the record with the configured TTL.
func (c *ResolveCache) Set(ctx context.Context, d *models.Domain) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resolveKey(d.Name, d.TLD), raw, c.ttl).Err()
}

// Invalidate drops the cached record after a mutation.
func (c *ResolveCache) Invalidate(ctx context.Context, name, tld string) error {
	return c.client.Del(ctx, resolveKey(name, tld)).Err()
}
