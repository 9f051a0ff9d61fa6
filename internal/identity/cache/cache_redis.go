package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"time"

	"github.com/redis/go-redis/v9"

	"grantgate/internal/identity/models"
	"grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

const redisKeyPrefix = "identity:"

// RedisCache backs the identity cache with Redis so multiple gateway
// instances share invalidations. TTL expiry is handled by Redis itself.
type RedisCache struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

type redisIdentity struct {
	Role string `json:"role"`
	Area string `json:"area"`
}

func (c *RedisCache) Get(ctx context.Context, id domain.UserID) (models.Identity, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Identity{}, sentinel.ErrNotFound
		}
		return models.Identity{}, fmt.Errorf("identity cache get: %w", sentinel.ErrUnavailable)
	}
	var stored redisIdentity
	if err := json.Unmarshal(raw, &stored); err != nil {
		return models.Identity{}, fmt.Errorf("decode cached identity: %w", err)
	}
	return models.Identity{
		ID:   id,
		Role: domain.Role(stored.Role),
		Area: domain.Area(stored.Area),
	}, nil
}

func (c *RedisCache) Set(ctx context.Context, identity models.Identity, ttl time.Duration) error {
	raw, err := json.Marshal(redisIdentity{
		Role: identity.Role.String(),
		Area: identity.Area.String(),
	})
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+identity.ID.String(), raw, ttl).Err(); err != nil {
		return fmt.Errorf("identity cache set: %w", sentinel.ErrUnavailable)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, id domain.UserID) error {
	if err := c.client.Del(ctx, redisKeyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("identity cache invalidate: %w", sentinel.ErrUnavailable)
	}
	return nil
}
