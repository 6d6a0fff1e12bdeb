package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"microblog/internal/mailer"
	"microblog/internal/metrics"
	"microblog/internal/model"
)

// ResetPublisher queues reset mail for asynchronous delivery.
type ResetPublisher interface {
	PublishPasswordResetRequested(ctx context.Context, userID int64) error
}

// SessionRevoker ends every refresh session of a user.
type SessionRevoker interface {
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// PasswordService runs the forgotten-password flow.
type PasswordService struct {
	users     *UserService
	tokens    *ResetTokenService
	mailer    mailer.Mailer
	publisher ResetPublisher
	sessions  SessionRevoker
	sender    string
	baseURL   string
}

type PasswordServiceConfig struct {
	Sender  string
	BaseURL string
}

func NewPasswordService(users *UserService, tokens *ResetTokenService, m mailer.Mailer, cfg PasswordServiceConfig) *PasswordService {
	return &PasswordService{
		users:   users,
		tokens:  tokens,
		mailer:  m,
		sender:  cfg.Sender,
		baseURL: cfg.BaseURL,
	}
}

// SetPublisher routes reset mail through the queue instead of sending inline.
func (s *PasswordService) SetPublisher(p ResetPublisher) {
	s.publisher = p
}

// SetSessionRevoker makes a successful reset log out every session.
func (s *PasswordService) SetSessionRevoker(r SessionRevoker) {
	s.sessions = r
}

// RequestReset sends a reset mail when email belongs to a user. Unknown
// emails succeed silently so the endpoint does not reveal registrations.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			log.Debug().Str("component", "PasswordService").Msg("reset requested for unknown email")
			return nil
		}
		return err
	}

	metrics.MailsQueued.Inc()

	if s.publisher != nil {
		err := s.publisher.PublishPasswordResetRequested(ctx, user.ID)
		if err == nil {
			return nil
		}
		log.Warn().Str("component", "PasswordService").Int64("user", user.ID).Err(err).
			Msg("queue unavailable, sending reset mail inline")
	}

	return s.sendResetMail(ctx, user)
}

// SendPasswordResetMail mints a token for userID and mails it. Called by the
// mail worker.
func (s *PasswordService) SendPasswordResetMail(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.sendResetMail(ctx, user)
}

func (s *PasswordService) sendResetMail(ctx context.Context, user *model.User) error {
	token, err := s.tokens.Issue(user, 0)
	if err != nil {
		return err
	}

	msg, err := mailer.RenderReset(s.sender, user.Email, mailer.ResetData{
		Username: user.Username,
		Link:     s.baseURL + "/reset_password/" + token,
	})
	if err != nil {
		return fmt.Errorf("render reset mail: %w", err)
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// ResetPassword verifies token and sets the new password on its subject.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string) (*model.User, error) {
	user, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetPassword(ctx, user.ID, newPassword); err != nil {
		return nil, err
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeAllUserTokens(ctx, user.ID); err != nil {
			log.Warn().Str("component", "PasswordService").Int64("user", user.ID).Err(err).
				Msg("failed to revoke sessions after reset")
		}
	}
	return user, nil
}
