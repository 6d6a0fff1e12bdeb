package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"microblog/internal/langdetect"
	"microblog/internal/metrics"
	"microblog/internal/model"
	"microblog/internal/repository"
)

type PostService struct {
	postRepo       repository.PostRepository
	detector       langdetect.Detector
	defaultPerPage int
}

func NewPostService(postRepo repository.PostRepository, detector langdetect.Detector, defaultPerPage int) *PostService {
	return &PostService{
		postRepo:       postRepo,
		detector:       detector,
		defaultPerPage: defaultPerPage,
	}
}

// Create stores a post by authorID. The body is trimmed and must be
// 1..140 characters. Language detection never fails the post.
func (s *PostService) Create(ctx context.Context, authorID int64, body string) (*model.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, model.ErrPostEmpty
	}
	if utf8.RuneCountInString(body) > model.MaxPostBodyLength {
		return nil, model.ErrPostTooLong
	}

	post := &model.Post{
		Body:     body,
		UserID:   authorID,
		Language: s.detectLanguage(body),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	return post, nil
}

func (s *PostService) detectLanguage(body string) string {
	if s.detector == nil {
		return ""
	}
	lang, err := s.detector.Detect(body)
	if err != nil {
		log.Debug().Str("component", "PostService").Err(err).Msg("language detection failed")
		return ""
	}
	if len(lang) > 5 {
		return ""
	}
	return lang
}

// ListByAuthor returns userID's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, userID int64, page, perPage int) (model.Page[model.FeedPost], error) {
	page, perPage = model.NormalizePage(page, perPage, s.defaultPerPage)
	if model.PastEnd(page, perPage) {
		return model.NewPage[model.FeedPost](nil, page, perPage), nil
	}

	rows, err := s.postRepo.ListByAuthors(ctx, nil, []int64{userID}, model.Offset(page, perPage), perPage+1)
	if err != nil {
		return model.Page[model.FeedPost]{}, err
	}

	return model.NewPage(toFeedPosts(rows), page, perPage), nil
}

// ListAll is the explore feed: every post, newest first.
func (s *PostService) ListAll(ctx context.Context, page, perPage int) (model.Page[model.FeedPost], error) {
	defer metrics.ObserveFeed("explore", time.Now())
	page, perPage = model.NormalizePage(page, perPage, s.defaultPerPage)
	if model.PastEnd(page, perPage) {
		return model.NewPage[model.FeedPost](nil, page, perPage), nil
	}

	rows, err := s.postRepo.ListAll(ctx, model.Offset(page, perPage), perPage+1)
	if err != nil {
		return model.Page[model.FeedPost]{}, err
	}

	return model.NewPage(toFeedPosts(rows), page, perPage), nil
}

func toFeedPosts(rows []model.FeedRow) []model.FeedPost {
	out := make([]model.FeedPost, len(rows))
	for i, r := range rows {
		out[i] = r.FeedPost()
	}
	return out
}
