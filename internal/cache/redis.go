package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sevenpm/date-backend/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

// --- seen-candidate sets ---
//
// Candidates already matched during an event night are tracked in a per-user
// Redis set keyed by event date. The set expires on its own shortly after the
// event; nothing reads yesterday's entries.

func (c *RedisCache) KeyForSeenSet(userID, eventDate string) string {
	return fmt.Sprintf("seen:%s:%s", eventDate, userID)
}

// MarkSeen records that userID was paired with otherID tonight.
func (c *RedisCache) MarkSeen(ctx context.Context, userID, otherID, eventDate string) error {
	key := c.KeyForSeenSet(userID, eventDate)
	if err := c.Client.SAdd(ctx, key, otherID).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, 24*time.Hour).Err()
}

// SeenTonight returns the set of user ids already paired with userID tonight.
func (c *RedisCache) SeenTonight(ctx context.Context, userID, eventDate string) (map[string]bool, error) {
	members, err := c.Client.SMembers(ctx, c.KeyForSeenSet(userID, eventDate)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		seen[m] = true
	}
	return seen, nil
}

// --- lobby counters ---

// KeyForLobbyCount generates the Redis key for an event night's RSVP count.
func (c *RedisCache) KeyForLobbyCount(eventDate string) string {
	return fmt.Sprintf("lobby:count:%s", eventDate)
}

func (c *RedisCache) UpdateLobbyCount(ctx context.Context, eventDate string, count int64) error {
	key := c.KeyForLobbyCount(eventDate)
	// Always refresh TTL when updating
	return c.Client.Set(ctx, key, count, time.Hour).Err()
}

func (c *RedisCache) GetLobbyCount(ctx context.Context, eventDate string) (int64, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForLobbyCount(eventDate)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}
