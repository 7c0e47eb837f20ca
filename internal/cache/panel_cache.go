package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// PanelCache keeps saved panel payloads in redis as raw JSON strings.
type PanelCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewPanelCache(client *redisv9.Client, ttl time.Duration) *PanelCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PanelCache{client: client, ttl: ttl}
}

func (c *PanelCache) Get(ctx context.Context, userID uint, panel string) (string, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID, panel)).Result()
	if err == redisv9.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get panel failed: %w", err)
	}
	return raw, true, nil
}

func (c *PanelCache) Set(ctx context.Context, userID uint, panel, payload string) error {
	if err := c.client.Set(ctx, c.key(userID, panel), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set panel failed: %w", err)
	}
	return nil
}

func (c *PanelCache) Delete(ctx context.Context, userID uint, panel string) error {
	if err := c.client.Del(ctx, c.key(userID, panel)).Err(); err != nil {
		return fmt.Errorf("redis delete panel failed: %w", err)
	}
	return nil
}

func (c *PanelCache) key(userID uint, panel string) string {
	return fmt.Sprintf("panel:%d:%s", userID, panel)
}
