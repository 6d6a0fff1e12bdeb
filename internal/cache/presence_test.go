package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	// DB 1 keeps tests away from dev data
	opts.DB = 1
	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestPresenceKey(t *testing.T) {
	assert.Equal(t, "presence:user:42", presenceKey(42))
}

func TestMarkSeen_ThrottlesWithinInterval(t *testing.T) {
	client := setupTestRedis(t)
	presence := NewPresenceCache(client)
	ctx := context.Background()

	first, err := presence.MarkSeen(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := presence.MarkSeen(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, second)

	other, err := presence.MarkSeen(ctx, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, other)
}

func TestMarkSeen_ExpiresAfterInterval(t *testing.T) {
	client := setupTestRedis(t)
	presence := NewPresenceCache(client)
	ctx := context.Background()

	_, err := presence.MarkSeen(ctx, 7, 100*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(250 * time.Millisecond)

	again, err := presence.MarkSeen(ctx, 7, 100*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, again)
}
