package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"microblog/internal/httputil"
	"microblog/internal/model"
)

// ProfileService is the part of UserService the profile pages need.
type ProfileService interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetProfile(ctx context.Context, viewerID int64, username string, page, perPage int) (*model.ProfileResponse, error)
	UpdateProfile(ctx context.Context, actorID int64, req *model.EditProfileRequest) (*model.User, error)
}

// EditProfileResponse is the current state of the edit profile form.
type EditProfileResponse struct {
	Username string  `json:"username"`
	AboutMe  *string `json:"about_me"`
}

type UserHandler struct {
	users ProfileService
}

func NewUserHandler(users ProfileService) *UserHandler {
	return &UserHandler{
		users: users,
	}
}

// Profile handles GET /user/{username}
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.users.GetProfile(r.Context(), viewerID, chi.URLParam(r, "username"), pageParam(r), 0)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		internalError(w, "UserHandler", "Failed to get profile", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// EditProfilePage handles GET /edit_profile
func (h *UserHandler) EditProfilePage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		internalError(w, "UserHandler", "Failed to get user", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, EditProfileResponse{Username: user.Username, AboutMe: user.AboutMe})
}

// EditProfile handles POST /edit_profile
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.EditProfileRequest
	if err := httputil.Decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if _, err := h.users.UpdateProfile(r.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteFlash(w, "/edit_profile", httputil.FlashError, "Please use a different username.")
		case errors.Is(err, model.ErrUsernameRequired):
			httputil.WriteValidationError(w, "username is required")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			internalError(w, "UserHandler", "Failed to update profile", err)
		}
		return
	}

	httputil.WriteFlash(w, "/edit_profile", httputil.FlashInfo, "Your changes have been saved.")
}
