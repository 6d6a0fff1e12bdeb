// Package mailer sends transactional email.
package mailer

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Message is a single outgoing email with optional HTML alternative.
type Message struct {
	From     string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them. Used
// when no mail server is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	log.Info().Str("component", "Mailer").
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.TextBody).
		Msg("mail server not configured, message logged")
	return nil
}
