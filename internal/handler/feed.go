package handler

import (
	"context"
	"errors"
	"net/http"

	"microblog/internal/httputil"
	"microblog/internal/model"
)

// FollowedFeed is the part of FeedService the index page needs.
type FollowedFeed interface {
	FollowedPosts(ctx context.Context, viewerID int64, page, perPage int) (model.Page[model.FeedPost], error)
}

// PostWriter is the part of PostService the feed pages need.
type PostWriter interface {
	Create(ctx context.Context, authorID int64, body string) (*model.Post, error)
	ListAll(ctx context.Context, page, perPage int) (model.Page[model.FeedPost], error)
}

// FeedResponse is the payload of the index and explore pages.
type FeedResponse struct {
	Title string                     `json:"title"`
	Posts model.Page[model.FeedPost] `json:"posts"`
}

type FeedHandler struct {
	feed  FollowedFeed
	posts PostWriter
}

func NewFeedHandler(feed FollowedFeed, posts PostWriter) *FeedHandler {
	return &FeedHandler{
		feed:  feed,
		posts: posts,
	}
}

// Index handles GET / and GET /index
// Returns the viewer's own and followed users' posts, newest first.
//
// Query params:
//   - page: optional, 1-based page number
func (h *FeedHandler) Index(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	posts, err := h.feed.FollowedPosts(r.Context(), userID, pageParam(r), 0)
	if err != nil {
		internalError(w, "FeedHandler", "Failed to get feed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FeedResponse{Title: "Home", Posts: posts})
}

// CreatePost handles POST / and POST /index
func (h *FeedHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.CreatePostRequest
	if err := httputil.Decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if _, err := h.posts.Create(r.Context(), userID, req.Body); err != nil {
		switch {
		case errors.Is(err, model.ErrPostEmpty):
			httputil.WriteValidationError(w, "body is required")
		case errors.Is(err, model.ErrPostTooLong):
			httputil.WriteValidationError(w, "body must be at most 140 characters")
		default:
			internalError(w, "FeedHandler", "Failed to create post", err)
		}
		return
	}

	httputil.WriteFlash(w, "/index", httputil.FlashInfo, "Your post is now live!")
}

// Explore handles GET /explore
func (h *FeedHandler) Explore(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	posts, err := h.posts.ListAll(r.Context(), pageParam(r), 0)
	if err != nil {
		internalError(w, "FeedHandler", "Failed to get posts", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FeedResponse{Title: "Explore", Posts: posts})
}
