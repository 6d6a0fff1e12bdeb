package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
	posts      *PostService
	now        func() time.Time
}

func NewUserService(repo repository.UserRepository, followRepo repository.FollowRepository, posts *PostService) *UserService {
	return &UserService{
		repo:       repo,
		followRepo: followRepo,
		posts:      posts,
		now:        time.Now,
	}
}

// Register creates a new account. Username and email must both be unused.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" {
		return nil, model.ErrUsernameRequired
	}
	if req.Password == "" {
		return nil, model.ErrPasswordRequired
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	}

	// The unique indexes still catch a concurrent registration.
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUsernameExists) || errors.Is(err, model.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks a username/password pair. It returns ErrUserNotFound
// for an unknown username and ErrInvalidCredentials for a wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// SetPassword replaces the stored hash for userID.
func (s *UserService) SetPassword(ctx context.Context, userID int64, plaintext string) error {
	if plaintext == "" {
		return model.ErrPasswordRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePasswordHash(ctx, userID, string(hashed))
}

// UpdateProfile applies the non-nil fields of req to the acting user.
// Keeping one's own username is not a conflict. An empty about_me clears it.
func (s *UserService) UpdateProfile(ctx context.Context, actorID int64, req *model.EditProfileRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	username := user.Username
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, model.ErrUsernameRequired
		}
	}

	if username != user.Username {
		exists, err := s.repo.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			return nil, model.ErrUsernameExists
		}
	}

	aboutMe := user.AboutMe
	if req.AboutMe != nil {
		if v := strings.TrimSpace(*req.AboutMe); v != "" {
			aboutMe = &v
		} else {
			aboutMe = nil
		}
	}

	if err := s.repo.UpdateProfile(ctx, actorID, username, aboutMe); err != nil {
		return nil, err
	}

	user.Username = username
	user.AboutMe = aboutMe
	return user, nil
}

// TouchLastSeen records activity now; last_seen never moves backwards.
func (s *UserService) TouchLastSeen(ctx context.Context, userID int64) error {
	return s.repo.TouchLastSeen(ctx, userID, s.now().UTC())
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// GetProfile assembles the profile page for username as seen by viewerID.
func (s *UserService) GetProfile(ctx context.Context, viewerID int64, username string, page, perPage int) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followed, err := s.followRepo.CountFollowed(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := &model.ProfileResponse{
		User:          user,
		Avatar:        user.Avatar(model.AvatarSizeProfile),
		FollowerCount: followers,
		FollowedCount: followed,
		IsSelf:        viewerID == user.ID,
	}

	if !resp.IsSelf && viewerID != 0 {
		resp.IsFollowing, err = s.followRepo.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	posts, err := s.posts.ListByAuthor(ctx, user.ID, page, perPage)
	if err != nil {
		return nil, err
	}
	resp.Posts = posts

	return resp, nil
}
