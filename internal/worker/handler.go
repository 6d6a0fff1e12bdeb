package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"microblog/internal/queue"
)

// ResetMailSender delivers a password reset mail for a user. The token is
// minted at delivery time so it never sits in the queue.
type ResetMailSender interface {
	SendPasswordResetMail(ctx context.Context, userID int64) error
}

// Handler processes mail events from the queue.
type Handler struct {
	resetSender ResetMailSender
}

// NewHandler creates a new event handler.
func NewHandler(resetSender ResetMailSender) *Handler {
	return &Handler{resetSender: resetSender}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.MailEvent) error {
	startTime := time.Now()
	logger := log.With().Str("component", "Worker").Str("type", event.Type).Int64("user", event.UserID).Logger()

	var err error
	switch event.Type {
	case queue.EventPasswordResetRequested:
		err = h.resetSender.SendPasswordResetMail(ctx, event.UserID)
	default:
		logger.Warn().Msg("unknown event type")
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(startTime)).Msg("HandleEvent failed")
		return err
	}

	logger.Info().Dur("duration", time.Since(startTime)).Msg("HandleEvent OK")
	return nil
}
