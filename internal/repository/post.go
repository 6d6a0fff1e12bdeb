package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"microblog/internal/model"
)

const feedColumns = `
	p.id, p.body, p.user_id, p.language, p.created_at,
	u.username AS author_username, u.email AS author_email
`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a post; id and created_at come from the database clock.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (body, user_id, language)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, post.Body, post.UserID, post.Language).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepository) ListByAuthors(ctx context.Context, q sqlx.QueryerContext, authorIDs []int64, offset, limit int) ([]model.FeedRow, error) {
	if len(authorIDs) == 0 {
		return []model.FeedRow{}, nil
	}
	if q == nil {
		q = r.db
	}

	query := `
		SELECT ` + feedColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ANY($1)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	var rows []model.FeedRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, pq.Array(authorIDs), limit, offset); err != nil {
		return nil, fmt.Errorf("list posts by authors: %w", err)
	}
	return rows, nil
}

func (r *postRepository) ListAll(ctx context.Context, offset, limit int) ([]model.FeedRow, error) {
	query := `
		SELECT ` + feedColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2
	`
	var rows []model.FeedRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list all posts: %w", err)
	}
	return rows, nil
}
