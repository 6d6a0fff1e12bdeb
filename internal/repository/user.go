package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"microblog/internal/model"
)

const userColumns = `id, username, email, password_hash, about_me, last_seen, created_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, about_me, last_seen, created_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, last_seen, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.AboutMe,
	).Scan(&u.ID, &u.LastSeen, &u.CreatedAt)
	if err != nil {
		return conflictOr(err, "failed to insert user")
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername retrieves a user by exact username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetByEmail retrieves a user by exact email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// ExistsByEmail checks if an email is already registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID int64, username string, aboutMe *string) error {
	query := `UPDATE users SET username = $1, about_me = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, username, aboutMe, userID)
	if err != nil {
		return conflictOr(err, "failed to update profile")
	}
	return requireRow(result, model.ErrUserNotFound)
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(result, model.ErrUserNotFound)
}

// TouchLastSeen never moves last_seen backwards.
func (r *userRepository) TouchLastSeen(ctx context.Context, userID int64, at time.Time) error {
	query := `UPDATE users SET last_seen = GREATEST(last_seen, $1) WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, userID)
	if err != nil {
		return fmt.Errorf("failed to touch last seen: %w", err)
	}
	return nil
}

func conflictOr(err error, msg string) error {
	switch uniqueConstraint(err) {
	case "users_username_key":
		return model.ErrUsernameExists
	case "users_email_key":
		return model.ErrEmailExists
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
