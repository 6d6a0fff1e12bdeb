package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, userID int64, username string, aboutMe *string) error
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
	TouchLastSeen(ctx context.Context, userID int64, at time.Time) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FollowRepository interface {
	// Create inserts the edge; reports false when it already existed.
	Create(ctx context.Context, followerID, followedID int64) (bool, error)
	// Delete removes the edge; reports false when there was none.
	Delete(ctx context.Context, followerID, followedID int64) (bool, error)
	Exists(ctx context.Context, followerID, followedID int64) (bool, error)
	CountFollowed(ctx context.Context, userID int64) (int, error)
	CountFollowers(ctx context.Context, userID int64) (int, error)
	// GetFollowedIDs runs on q so it can share a transaction with post reads.
	GetFollowedIDs(ctx context.Context, q sqlx.QueryerContext, userID int64) ([]int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// ListByAuthors returns posts by any of authorIDs, newest first, ties by id descending.
	ListByAuthors(ctx context.Context, q sqlx.QueryerContext, authorIDs []int64, offset, limit int) ([]model.FeedRow, error)
	ListAll(ctx context.Context, offset, limit int) ([]model.FeedRow, error)
}
