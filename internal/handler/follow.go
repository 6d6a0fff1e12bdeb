package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"microblog/internal/httputil"
	"microblog/internal/model"
)

// FollowGraph is the part of FollowService the follow endpoints need.
type FollowGraph interface {
	FollowByUsername(ctx context.Context, followerID int64, username string) (*model.User, error)
	UnfollowByUsername(ctx context.Context, followerID int64, username string) (*model.User, error)
}

type FollowHandler struct {
	follows FollowGraph
}

func NewFollowHandler(follows FollowGraph) *FollowHandler {
	return &FollowHandler{
		follows: follows,
	}
}

// Follow handles POST /follow/{username}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	username := chi.URLParam(r, "username")
	profile := profilePath(username)

	if _, err := h.follows.FollowByUsername(r.Context(), followerID, username); err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteFlash(w, "/index", httputil.FlashError, fmt.Sprintf("User %s not found.", username))
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteFlash(w, profile, httputil.FlashError, "You cannot follow yourself!")
		default:
			internalError(w, "FollowHandler", "Failed to follow user", err)
		}
		return
	}

	httputil.WriteFlash(w, profile, httputil.FlashInfo, fmt.Sprintf("You are following %s!", username))
}

// Unfollow handles POST /unfollow/{username}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	username := chi.URLParam(r, "username")
	profile := profilePath(username)

	if _, err := h.follows.UnfollowByUsername(r.Context(), followerID, username); err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteFlash(w, "/index", httputil.FlashError, fmt.Sprintf("User %s not found.", username))
		case errors.Is(err, model.ErrCannotUnfollowSelf):
			httputil.WriteFlash(w, profile, httputil.FlashError, "You cannot unfollow yourself!")
		default:
			internalError(w, "FollowHandler", "Failed to unfollow user", err)
		}
		return
	}

	httputil.WriteFlash(w, profile, httputil.FlashInfo, fmt.Sprintf("You are not following %s.", username))
}

func profilePath(username string) string {
	return "/user/" + url.PathEscape(username)
}
