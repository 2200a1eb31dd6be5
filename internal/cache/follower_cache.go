package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// FollowerCache 缓存某用户的粉丝 id 索引
type FollowerCache interface {
	// Get 未命中时 ok=false
	Get(ctx context.Context, userID string) (ids []string, ok bool, err error)
	Set(ctx context.Context, userID string, ids []string) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// RedisFollowerCache 以 JSON 数组存放粉丝 id，空列表也能命中
type RedisFollowerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFollowerCache(client *redis.Client, ttl time.Duration) *RedisFollowerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisFollowerCache{client: client, ttl: ttl}
}

func followerKey(userID string) string {
	return fmt.Sprintf("followers:index:%s", userID)
}

func (c *RedisFollowerCache) Get(ctx context.Context, userID string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, followerKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// 脏数据当作未命中
		_ = c.client.Del(ctx, followerKey(userID)).Err()
		return nil, false, nil
	}
	return ids, true, nil
}

func (c *RedisFollowerCache) Set(ctx context.Context, userID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, followerKey(userID), payload, c.ttl).Err()
}

func (c *RedisFollowerCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = followerKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// Nop 未启用 Redis 时使用
type Nop struct{}

func (Nop) Get(context.Context, string) ([]string, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []string) error         { return nil }
func (Nop) Invalidate(context.Context, ...string) error         { return nil }
