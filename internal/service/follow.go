package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// FollowService maintains the directed follower graph. Follow and unfollow
// are idempotent; repeating either is not an error.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID {
		return model.ErrCannotFollowSelf
	}

	created, err := s.followRepo.Create(ctx, followerID, followedID)
	if err != nil {
		return err
	}

	log.Debug().Str("component", "FollowService").
		Int64("follower", followerID).
		Int64("followed", followedID).
		Bool("created", created).
		Msg("follow")
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID {
		return model.ErrCannotUnfollowSelf
	}

	removed, err := s.followRepo.Delete(ctx, followerID, followedID)
	if err != nil {
		return err
	}

	log.Debug().Str("component", "FollowService").
		Int64("follower", followerID).
		Int64("followed", followedID).
		Bool("removed", removed).
		Msg("unfollow")
	return nil
}

// FollowByUsername resolves username and follows it.
func (s *FollowService) FollowByUsername(ctx context.Context, followerID int64, username string) (*model.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return target, s.Follow(ctx, followerID, target.ID)
}

// UnfollowByUsername resolves username and unfollows it.
func (s *FollowService) UnfollowByUsername(ctx context.Context, followerID int64, username string) (*model.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return target, s.Unfollow(ctx, followerID, target.ID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followedID)
}

// FollowedCount is how many users userID follows.
func (s *FollowService) FollowedCount(ctx context.Context, userID int64) (int, error) {
	return s.followRepo.CountFollowed(ctx, userID)
}

// FollowerCount is how many users follow userID.
func (s *FollowService) FollowerCount(ctx context.Context, userID int64) (int, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}
