package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"legalresearch/internal/model"
)

// QueryCache holds the default (unfiltered, newest-first) audit log page per
// organization, invalidated on every write.
type QueryCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewQueryCache(client *redisv9.Client, ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &QueryCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *QueryCache) Get(ctx context.Context, organizationID string) ([]model.Query, bool, error) {
	raw, err := c.client.Get(ctx, c.key(organizationID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get recent queries failed: %w", err)
	}

	var queries []model.Query
	if err := json.Unmarshal([]byte(raw), &queries); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached queries failed: %w", err)
	}
	return queries, true, nil
}

func (c *QueryCache) Set(ctx context.Context, organizationID string, queries []model.Query) error {
	payload, err := json.Marshal(queries)
	if err != nil {
		return fmt.Errorf("marshal query cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(organizationID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set recent queries failed: %w", err)
	}
	return nil
}

func (c *QueryCache) Invalidate(ctx context.Context, organizationID string) error {
	if err := c.client.Del(ctx, c.key(organizationID)).Err(); err != nil {
		return fmt.Errorf("redis delete recent queries failed: %w", err)
	}
	return nil
}

func (c *QueryCache) key(organizationID string) string {
	return fmt.Sprintf("queries:recent:%s", organizationID)
}
