package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/mailer"
	"microblog/internal/model"
)

type captureMailer struct {
	sent []mailer.Message
	err  error
}

func (m *captureMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

type fakePublisher struct {
	users []int64
	err   error
}

func (p *fakePublisher) PublishPasswordResetRequested(ctx context.Context, userID int64) error {
	p.users = append(p.users, userID)
	return p.err
}

type fakeRevoker struct{ users []int64 }

func (r *fakeRevoker) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	r.users = append(r.users, userID)
	return nil
}

func newPasswordService(store *memStore, m mailer.Mailer) (*PasswordService, *ResetTokenService) {
	users := newUserService(store)
	tokens := NewResetTokenService("secret", 0, store.userRepo())
	return NewPasswordService(users, tokens, m, PasswordServiceConfig{
		Sender:  "admin@example.com",
		BaseURL: "http://localhost:8080",
	}), tokens
}

func TestPasswordService_RequestResetSendsInline(t *testing.T) {
	store := newMemStore()
	m := &captureMailer{}
	svc, tokens := newPasswordService(store, m)
	susan := store.addUser("susan", "susan@example.com")

	require.NoError(t, svc.RequestReset(context.Background(), "susan@example.com"))

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, []string{"susan@example.com"}, msg.To)
	assert.Equal(t, "admin@example.com", msg.From)
	assert.Equal(t, mailer.ResetSubject, msg.Subject)

	// the mailed link carries a token that verifies back to susan
	const prefix = "http://localhost:8080/reset_password/"
	idx := strings.Index(msg.TextBody, prefix)
	require.GreaterOrEqual(t, idx, 0)
	token := strings.Fields(msg.TextBody[idx+len(prefix):])[0]
	u, err := tokens.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, susan.ID, u.ID)
}

func TestPasswordService_RequestResetUnknownEmailIsSilent(t *testing.T) {
	store := newMemStore()
	m := &captureMailer{}
	svc, _ := newPasswordService(store, m)

	assert.NoError(t, svc.RequestReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, m.sent)
}

func TestPasswordService_RequestResetUsesQueue(t *testing.T) {
	store := newMemStore()
	m := &captureMailer{}
	pub := &fakePublisher{}
	svc, _ := newPasswordService(store, m)
	svc.SetPublisher(pub)
	susan := store.addUser("susan", "susan@example.com")

	require.NoError(t, svc.RequestReset(context.Background(), "susan@example.com"))

	assert.Equal(t, []int64{susan.ID}, pub.users)
	assert.Empty(t, m.sent, "mail is left to the worker")

	// the worker path
	require.NoError(t, svc.SendPasswordResetMail(context.Background(), susan.ID))
	assert.Len(t, m.sent, 1)
}

func TestPasswordService_RequestResetFallsBackWhenQueueFails(t *testing.T) {
	store := newMemStore()
	m := &captureMailer{}
	svc, _ := newPasswordService(store, m)
	svc.SetPublisher(&fakePublisher{err: errors.New("redis down")})
	store.addUser("susan", "susan@example.com")

	require.NoError(t, svc.RequestReset(context.Background(), "susan@example.com"))
	assert.Len(t, m.sent, 1)
}

func TestPasswordService_ResetPassword(t *testing.T) {
	store := newMemStore()
	svc, tokens := newPasswordService(store, &captureMailer{})
	revoker := &fakeRevoker{}
	svc.SetSessionRevoker(revoker)
	users := newUserService(store)
	ctx := context.Background()

	susan, err := users.Register(ctx, &model.RegisterRequest{Username: "susan", Email: "susan@example.com", Password: "cat"})
	require.NoError(t, err)
	token, err := tokens.Issue(susan, 0)
	require.NoError(t, err)

	_, err = svc.ResetPassword(ctx, token, "dog")
	require.NoError(t, err)

	_, err = users.Authenticate(ctx, "susan", "dog")
	assert.NoError(t, err)
	_, err = users.Authenticate(ctx, "susan", "cat")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	assert.Equal(t, []int64{susan.ID}, revoker.users)

	_, err = svc.ResetPassword(ctx, "bogus", "x")
	assert.ErrorIs(t, err, model.ErrResetTokenInvalid)
}
