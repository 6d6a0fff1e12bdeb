package model

import (
	"errors"
	"time"
)

// Post is a short, immutable text post.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	Body      string    `db:"body" json:"body"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Language  string    `db:"language" json:"language"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FeedPost is a post joined with its author for display.
type FeedPost struct {
	Post
	Author UserSummary `json:"author"`
}

// FeedRow is the scan target for post queries that join the author.
type FeedRow struct {
	Post
	AuthorUsername string `db:"author_username"`
	AuthorEmail    string `db:"author_email"`
}

// FeedPost converts the joined row into its display form.
func (r FeedRow) FeedPost() FeedPost {
	return FeedPost{
		Post: r.Post,
		Author: UserSummary{
			ID:        r.UserID,
			Username:  r.AuthorUsername,
			AvatarURL: AvatarURL(r.AuthorEmail, AvatarSizeSmall),
		},
	}
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Body string `json:"body" validate:"required"`
}

const MaxPostBodyLength = 140

var (
	ErrPostEmpty   = errors.New("post body is empty")
	ErrPostTooLong = errors.New("post body too long")
)
