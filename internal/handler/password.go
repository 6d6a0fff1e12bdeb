package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"microblog/internal/httputil"
	"microblog/internal/model"
	"microblog/internal/transport/http/middleware"
)

// PasswordResetter is the part of PasswordService the reset endpoints need.
type PasswordResetter interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) (*model.User, error)
}

type PasswordHandler struct {
	passwords PasswordResetter
}

func NewPasswordHandler(passwords PasswordResetter) *PasswordHandler {
	return &PasswordHandler{
		passwords: passwords,
	}
}

// RequestReset handles POST /reset_password_request
// The response is the same whether or not the email is registered.
func (h *PasswordHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		httputil.WriteRedirect(w, "/index", nil)
		return
	}

	var req model.ResetPasswordRequest
	if err := httputil.Decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if err := h.passwords.RequestReset(r.Context(), req.Email); err != nil {
		internalError(w, "PasswordHandler", "Failed to send reset mail", err)
		return
	}

	httputil.WriteFlash(w, "/login", httputil.FlashInfo, "Check your email for the instructions to reset your password")
}

// ResetPassword handles POST /reset_password/{token}
func (h *PasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		httputil.WriteRedirect(w, "/index", nil)
		return
	}

	var req model.ResetPasswordForm
	if err := httputil.Decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if _, err := h.passwords.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password); err != nil {
		switch {
		case errors.Is(err, model.ErrResetTokenExpired):
			httputil.WriteFlash(w, "/index", httputil.FlashError, "The password reset link has expired.")
		case errors.Is(err, model.ErrResetTokenInvalid), errors.Is(err, model.ErrUserNotFound):
			httputil.WriteFlash(w, "/index", httputil.FlashError, "The password reset link is invalid.")
		case errors.Is(err, model.ErrPasswordRequired):
			httputil.WriteValidationError(w, "password is required")
		default:
			internalError(w, "PasswordHandler", "Failed to reset password", err)
		}
		return
	}

	httputil.WriteFlash(w, "/login", httputil.FlashInfo, "Your password has been reset.")
}
