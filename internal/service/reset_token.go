package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// DefaultResetTokenTTL applies when a non-positive TTL is requested.
const DefaultResetTokenTTL = 600 * time.Second

// resetClaims carries the user id under the "reset_password" claim.
type resetClaims struct {
	UserID int64 `json:"reset_password"`
	jwt.RegisteredClaims
}

// ResetTokenService issues and verifies stateless password reset tokens.
// Tokens are never stored; possession until expiry is the only check.
type ResetTokenService struct {
	secret []byte
	ttl    time.Duration
	users  repository.UserRepository
	now    func() time.Time
}

func NewResetTokenService(secret string, ttl time.Duration, users repository.UserRepository) *ResetTokenService {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

// Issue signs a reset token for user valid for ttl (service default when ttl <= 0).
func (s *ResetTokenService) Issue(user *model.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	claims := resetClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return token, nil
}

// Verify checks signature, algorithm and expiry and loads the subject.
func (s *ResetTokenService) Verify(ctx context.Context, token string) (*model.User, error) {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrResetTokenExpired
		}
		return nil, model.ErrResetTokenInvalid
	}
	if claims.UserID <= 0 {
		return nil, model.ErrResetTokenInvalid
	}

	return s.users.GetByID(ctx, claims.UserID)
}
