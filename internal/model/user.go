package model

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User represents a user in the system
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"-"`
	PasswordHash string    `db:"password_hash" json:"-"` // "-" hides from JSON output
	AboutMe      *string   `db:"about_me" json:"about_me"`
	LastSeen     time.Time `db:"last_seen" json:"last_seen"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Avatar returns the Gravatar identicon URL for the user's email.
func (u *User) Avatar(size int) string {
	return AvatarURL(u.Email, size)
}

// Summary returns the public fields shown next to a post.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.Avatar(AvatarSizeSmall),
	}
}

// AvatarURL derives the identicon URL from the lower-cased email.
func AvatarURL(email string, size int) string {
	digest := md5.Sum([]byte(strings.ToLower(email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(digest[:]), size)
}

const (
	AvatarSizeSmall   = 36
	AvatarSizeProfile = 128

	MaxUsernameLength = 64
	MaxEmailLength    = 120
	MaxAboutMeLength  = 140
)

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// EditProfileRequest carries optional profile changes.
type EditProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=64"`
	AboutMe  *string `json:"about_me" validate:"omitempty,max=140"`
}

// ProfileResponse is the /user/{username} payload.
type ProfileResponse struct {
	User          *User          `json:"user"`
	Avatar        string         `json:"avatar"`
	FollowerCount int            `json:"follower_count"`
	FollowedCount int            `json:"followed_count"`
	IsFollowing   bool           `json:"is_following"`
	IsSelf        bool           `json:"is_self"`
	Posts         Page[FeedPost] `json:"posts"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to use a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to register a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when the password does not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordRequired is returned when an empty password is supplied
	ErrPasswordRequired = errors.New("password is required")

	ErrUsernameRequired = errors.New("username is required")
)
