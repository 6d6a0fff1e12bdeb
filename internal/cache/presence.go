package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PresenceKeyPrefix is the key prefix for per-user last-seen throttle markers.
const PresenceKeyPrefix = "presence:user:"

// PresenceCache throttles last-seen writes so an active user touches the
// users table at most once per interval.
type PresenceCache interface {
	// MarkSeen reports true when no marker existed for userID, meaning the
	// caller should persist a new last-seen timestamp.
	MarkSeen(ctx context.Context, userID int64, interval time.Duration) (bool, error)
}

// RedisPresenceCache implements PresenceCache with SET NX EX markers.
type RedisPresenceCache struct {
	client *redis.Client
}

func NewPresenceCache(client *redis.Client) PresenceCache {
	return &RedisPresenceCache{client: client}
}

func presenceKey(userID int64) string {
	return PresenceKeyPrefix + strconv.FormatInt(userID, 10)
}

func (c *RedisPresenceCache) MarkSeen(ctx context.Context, userID int64, interval time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, presenceKey(userID), time.Now().Unix(), interval).Result()
	if err != nil {
		log.Warn().Str("component", "PresenceCache").Int64("user", userID).Err(err).Msg("MarkSeen failed")
		return false, fmt.Errorf("mark seen: %w", err)
	}
	return ok, nil
}
