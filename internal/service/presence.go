package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"microblog/internal/cache"
)

// LastSeenToucher persists a user's activity timestamp.
type LastSeenToucher interface {
	TouchLastSeen(ctx context.Context, userID int64) error
}

// PresenceService records activity at most once per interval per user when
// a presence cache is available, and on every call otherwise.
type PresenceService struct {
	users    LastSeenToucher
	cache    cache.PresenceCache
	interval time.Duration
}

func NewPresenceService(users LastSeenToucher, c cache.PresenceCache, interval time.Duration) *PresenceService {
	return &PresenceService{users: users, cache: c, interval: interval}
}

func (s *PresenceService) Touch(ctx context.Context, userID int64) error {
	if s.cache != nil && s.interval > 0 {
		fresh, err := s.cache.MarkSeen(ctx, userID, s.interval)
		switch {
		case err != nil:
			log.Debug().Str("component", "PresenceService").Err(err).Msg("presence cache unavailable, writing through")
		case !fresh:
			return nil
		}
	}
	return s.users.TouchLastSeen(ctx, userID)
}
