// Package redis holds the connection shared by the presence throttle, the
// mail stream publisher and the mail workers. Redis is optional for this
// service, so Connect failures are reported rather than fatal.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ClientName is reported in CLIENT LIST unless the URL sets client_name.
const ClientName = "microblog"

type Client struct {
	*redis.Client
}

// NewClient builds the pool from redis://[:password@]host:port[/db]
// without dialing.
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = ClientName
	}

	return &Client{Client: redis.NewClient(opts)}, nil
}

// Connect builds the pool and pings it within timeout. On failure the pool
// is closed and the caller runs without presence throttling or the mail
// stream.
func Connect(ctx context.Context, redisURL string, timeout time.Duration) (*Client, error) {
	c, err := NewClient(redisURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.Client.Ping(pingCtx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info().Str("component", "Redis").Str("addr", c.Options().Addr).Int("db", c.Options().DB).Msg("Connected to Redis")
	return c, nil
}
