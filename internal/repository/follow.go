package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := `
		INSERT INTO followers (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := `DELETE FROM followers WHERE follower_id = $1 AND followed_id = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM followers WHERE follower_id = $1 AND followed_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

func (r *followRepository) CountFollowed(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM followers WHERE follower_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count followed: %w", err)
	}
	return n, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM followers WHERE followed_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return n, nil
}

func (r *followRepository) GetFollowedIDs(ctx context.Context, q sqlx.QueryerContext, userID int64) ([]int64, error) {
	if q == nil {
		q = r.db
	}
	var ids []int64
	err := sqlx.SelectContext(ctx, q, &ids, `SELECT followed_id FROM followers WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get followed ids: %w", err)
	}
	return ids, nil
}
