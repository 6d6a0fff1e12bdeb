package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/config"
	"microblog/internal/model"
)

func newAuthService(store *memStore) *AuthService {
	return NewAuthService(store.tokenRepo(), &config.Config{
		SecretKey:          "secret",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 3600,
	})
}

func TestAuthService_TokenPairAndParse(t *testing.T) {
	svc := newAuthService(newMemStore())

	pair, err := svc.GenerateTokenPair(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 900, pair.ExpiresIn)
	assert.NotEmpty(t, pair.RefreshToken)

	userID, err := svc.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	_, err = ParseAccessToken(pair.AccessToken, "wrong")
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestParseAccessToken_Expired(t *testing.T) {
	svc := newAuthService(newMemStore())
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := svc.GenerateTokenPair(context.Background(), 7)
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrAccessTokenExpired)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store)
	ctx := context.Background()

	first, err := svc.GenerateTokenPair(ctx, 7)
	require.NoError(t, err)

	second, userID, err := svc.RefreshTokens(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	old, err := store.tokenRepo().FindByTokenHash(ctx, hashToken(first.RefreshToken))
	require.NoError(t, err)
	assert.True(t, old.IsRevoked())
	require.NotNil(t, old.ReplacedBy)
}

func TestAuthService_RefreshReuseRevokesFamily(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store)
	ctx := context.Background()

	first, _ := svc.GenerateTokenPair(ctx, 7)
	second, _, err := svc.RefreshTokens(ctx, first.RefreshToken)
	require.NoError(t, err)

	_, _, err = svc.RefreshTokens(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshTokenReused)

	_, _, err = svc.RefreshTokens(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshTokenReused, "the whole family is revoked after reuse")
}

func TestAuthService_RefreshExpiredAndUnknown(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store)
	ctx := context.Background()

	pair, _ := svc.GenerateTokenPair(ctx, 7)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, _, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshTokenExpired)

	_, _, err = svc.RefreshTokens(ctx, "unknown")
	assert.ErrorIs(t, err, model.ErrRefreshTokenNotFound)
}

func TestAuthService_RevokeRefreshToken(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store)
	ctx := context.Background()

	pair, _ := svc.GenerateTokenPair(ctx, 7)
	require.NoError(t, svc.RevokeRefreshToken(ctx, pair.RefreshToken))

	_, _, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, model.ErrRefreshTokenReused)
}
