package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"microblog/internal/config"
	"microblog/internal/httputil"
	"microblog/internal/model"
	"microblog/internal/transport/http/middleware"
)

// Authenticator is the part of UserService the auth endpoints need.
type Authenticator interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

// SessionIssuer is the part of AuthService the auth endpoints need.
type SessionIssuer interface {
	GenerateTokenPair(ctx context.Context, userID int64) (*model.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshTokenRaw string) (*model.TokenPair, int64, error)
	RevokeRefreshToken(ctx context.Context, refreshTokenRaw string) error
}

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	users    Authenticator
	sessions SessionIssuer
	config   *config.Config
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(users Authenticator, sessions SessionIssuer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		config:   cfg,
	}
}

// LoginPage handles GET /login. Authenticated users are sent to the index.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		httputil.WriteRedirect(w, "/index", nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"title": "Sign In"})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		httputil.WriteRedirect(w, "/index", nil)
		return
	}

	var req model.LoginRequest
	if err := httputil.Decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) || errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteFlash(w, "/login", httputil.FlashError, "Invalid username or password")
			return
		}
		internalError(w, "AuthHandler", "Failed to login", err)
		return
	}

	tokenPair, err := h.sessions.GenerateTokenPair(r.Context(), user.ID)
	if err != nil {
		internalError(w, "AuthHandler", "Failed to generate tokens", err)
		return
	}

	h.setSessionCookies(w, tokenPair, req.RememberMe)

	httputil.WriteJSON(w, http.StatusOK, model.LoginResponse{
		User:         user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.RefreshTokenCookie); err == nil && cookie.Value != "" {
		err := h.sessions.RevokeRefreshToken(r.Context(), cookie.Value)
		if err != nil && !errors.Is(err, model.ErrRefreshTokenNotFound) {
			internalError(w, "AuthHandler", "Failed to logout", err)
			return
		}
	}

	h.clearSessionCookies(w)
	httputil.WriteRedirect(w, "/index", nil)
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		httputil.WriteRedirect(w, "/index", nil)
		return
	}

	var req model.RegisterRequest
	if err := httputil.Decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if _, err := h.users.Register(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteFlash(w, "/register", httputil.FlashError, "Please use a different username.")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteFlash(w, "/register", httputil.FlashError, "Please use a different email address.")
		case errors.Is(err, model.ErrPasswordRequired):
			httputil.WriteValidationError(w, "password is required")
		default:
			internalError(w, "AuthHandler", "Failed to register", err)
		}
		return
	}

	httputil.WriteFlash(w, "/login", httputil.FlashInfo, "Congratulations, you are now a registered user!")
}

// Refresh handles token refresh
// POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if cookie, err := r.Cookie(middleware.RefreshTokenCookie); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
	} else if err := httputil.Decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	tokenPair, _, err := h.sessions.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRefreshTokenNotFound):
			httputil.WriteUnauthorized(w, "Invalid refresh token")
		case errors.Is(err, model.ErrRefreshTokenExpired):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Refresh token has expired")
		case errors.Is(err, model.ErrRefreshTokenReused):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenReused, "Refresh token reuse detected. Please login again.")
		default:
			internalError(w, "AuthHandler", "Failed to refresh tokens", err)
		}
		return
	}

	h.setSessionCookies(w, tokenPair, true)
	httputil.WriteJSON(w, http.StatusOK, tokenPair)
}

// setSessionCookies stores both tokens as httpOnly cookies. Without
// remember the refresh cookie lives for the browser session only.
func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair *model.TokenPair, remember bool) {
	secure := h.config.CookieSecure()

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   pair.ExpiresIn,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	refresh := &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		refresh.MaxAge = h.config.RefreshTokenMaxAge
	}
	http.SetCookie(w, refresh)
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
		})
	}
}
