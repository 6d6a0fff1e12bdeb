package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Message represents a message read from a Redis stream.
type Message struct {
	ID    string // Redis message ID (e.g., "1702000000000-0")
	Event MailEvent
}

// Consumer defines the interface for consuming events from a stream.
type Consumer interface {
	// EnsureGroup creates the consumer group if it doesn't exist.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read reads new messages for this consumer, blocking up to block.
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// ReadPending reads messages delivered to this consumer but never acknowledged.
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)

	// Ack removes messages from the consumer's pending list.
	Ack(ctx context.Context, stream, group string, messageIDs ...string) error
}

// RedisConsumer implements Consumer using Redis Streams.
type RedisConsumer struct {
	client *redis.Client
}

// NewConsumer creates a new Consumer backed by Redis Streams.
func NewConsumer(client *redis.Client) *RedisConsumer {
	return &RedisConsumer{client: client}
}

// EnsureGroup runs XGROUP CREATE ... MKSTREAM starting from "0".
func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	logger := log.With().Str("component", "Consumer").Str("stream", stream).Str("group", group).Logger()

	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			logger.Debug().Msg("EnsureGroup: already exists")
			return nil
		}
		logger.Error().Err(err).Msg("EnsureGroup failed")
		return fmt.Errorf("create consumer group: %w", err)
	}

	logger.Info().Msg("EnsureGroup: created")
	return nil
}

// Read reads new messages using XREADGROUP with ">".
func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	messages, malformed := parseStreams(streams)
	c.dropMalformed(ctx, stream, group, malformed)
	return messages, nil
}

// ReadPending reads with ID "0" to recover in-flight messages after a crash.
func (c *RedisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, "0"},
		Count:    count,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup pending: %w", err)
	}

	messages, malformed := parseStreams(streams)
	c.dropMalformed(ctx, stream, group, malformed)
	return messages, nil
}

// Ack acknowledges messages using XACK.
func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

// dropMalformed acks entries that can never be parsed so they leave the
// pending list instead of being redelivered forever.
func (c *RedisConsumer) dropMalformed(ctx context.Context, stream, group string, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := c.Ack(ctx, stream, group, ids...); err != nil {
		log.Error().Str("component", "Consumer").Strs("msg_ids", ids).Err(err).Msg("ack malformed failed")
		return
	}
	log.Warn().Str("component", "Consumer").Strs("msg_ids", ids).Msg("dropped malformed entries")
}

// parseStreams splits entries into parsed messages and the ids of entries
// that failed to parse.
func parseStreams(streams []redis.XStream) (messages []Message, malformed []string) {
	for _, s := range streams {
		for _, msg := range s.Messages {
			event, err := ParseMailEvent(msg.Values)
			if err != nil {
				log.Warn().Str("component", "Consumer").Str("msg_id", msg.ID).Err(err).Msg("parse error")
				malformed = append(malformed, msg.ID)
				continue
			}
			messages = append(messages, Message{ID: msg.ID, Event: event})
		}
	}
	return messages, malformed
}
