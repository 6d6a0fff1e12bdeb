package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"microblog/internal/database"
	"microblog/internal/metrics"
	"microblog/internal/model"
	"microblog/internal/repository"
)

// FeedService assembles the home feed: posts by the viewer and everyone
// the viewer follows.
type FeedService struct {
	tx             database.TxRunner
	followRepo     repository.FollowRepository
	postRepo       repository.PostRepository
	defaultPerPage int
}

func NewFeedService(
	tx database.TxRunner,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
	defaultPerPage int,
) *FeedService {
	return &FeedService{
		tx:             tx,
		followRepo:     followRepo,
		postRepo:       postRepo,
		defaultPerPage: defaultPerPage,
	}
}

// FollowedPosts returns one page of the viewer's feed, newest first with
// ties broken by id. The follow set and the posts are read from one
// snapshot so a concurrent follow cannot split a page.
func (s *FeedService) FollowedPosts(ctx context.Context, viewerID int64, page, perPage int) (model.Page[model.FeedPost], error) {
	start := time.Now()
	defer metrics.ObserveFeed("followed", start)

	page, perPage = model.NormalizePage(page, perPage, s.defaultPerPage)
	if model.PastEnd(page, perPage) {
		return model.NewPage[model.FeedPost](nil, page, perPage), nil
	}

	var rows []model.FeedRow
	err := s.tx.ReadOnly(ctx, func(tx *sqlx.Tx) error {
		followed, err := s.followRepo.GetFollowedIDs(ctx, tx, viewerID)
		if err != nil {
			return err
		}

		rows, err = s.postRepo.ListByAuthors(ctx, tx, authorSet(viewerID, followed), model.Offset(page, perPage), perPage+1)
		return err
	})
	if err != nil {
		return model.Page[model.FeedPost]{}, err
	}

	result := model.NewPage(toFeedPosts(rows), page, perPage)

	log.Debug().Str("component", "FeedService").
		Int64("viewer", viewerID).
		Int("page", page).
		Int("items", len(result.Items)).
		Bool("has_next", result.HasNext).
		Dur("duration", time.Since(start)).
		Msg("feed assembled")
	return result, nil
}

// authorSet is {viewer} ∪ followed without duplicates.
func authorSet(viewerID int64, followed []int64) []int64 {
	seen := make(map[int64]struct{}, len(followed)+1)
	out := make([]int64, 0, len(followed)+1)
	for _, id := range append([]int64{viewerID}, followed...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
