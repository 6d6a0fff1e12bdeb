package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream and returns the
	// message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event MailEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event to the stream using XADD with an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event MailEvent) (string, error) {
	startTime := time.Now()
	logger := log.With().Str("component", "Publisher").Str("stream", stream).Str("type", event.Type).Logger()

	values, err := event.ToMap()
	if err != nil {
		logger.Error().Err(err).Msg("Publish failed")
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		logger.Error().Err(err).Msg("Publish failed")
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	logger.Debug().
		Str("msg_id", messageID).
		Int64("user", event.UserID).
		Dur("duration", time.Since(startTime)).
		Msg("Publish OK")
	return messageID, nil
}

// PublishPasswordResetRequested queues a reset mail for userID.
func (p *RedisPublisher) PublishPasswordResetRequested(ctx context.Context, userID int64) error {
	_, err := p.Publish(ctx, StreamMail, NewPasswordResetRequestedEvent(userID))
	return err
}
