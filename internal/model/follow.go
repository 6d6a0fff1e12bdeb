package model

import (
	"errors"
	"time"
)

type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FollowedID int64     `db:"followed_id" json:"followed_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type UserSummary struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	AvatarURL string `json:"avatar"`
}

var (
	ErrCannotFollowSelf   = errors.New("cannot follow yourself")
	ErrCannotUnfollowSelf = errors.New("cannot unfollow yourself")
)
