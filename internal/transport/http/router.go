package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"microblog/internal/handler"
	"microblog/internal/httputil"
	"microblog/internal/metrics"
	authmw "microblog/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler      *handler.AuthHandler
	FeedHandler      *handler.FeedHandler
	UserHandler      *handler.UserHandler
	FollowHandler    *handler.FollowHandler
	TranslateHandler *handler.TranslateHandler
	PasswordHandler  *handler.PasswordHandler
	Presence         authmw.PresenceToucher
	JWTSecret        string
	AllowedOrigins   []string

	// AuthRateLimit caps credential and reset requests per IP per minute.
	AuthRateLimit int
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	limit := cfg.AuthRateLimit
	if limit <= 0 {
		limit = 20
	}
	authLimiter := httprate.LimitByIP(limit, time.Minute)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	// Public routes. A valid session is still recognised so that logged-in
	// users are redirected away from these pages.
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))

		r.Get("/login", cfg.AuthHandler.LoginPage)
		r.Post("/auth/refresh", cfg.AuthHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter)

			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/reset_password_request", cfg.PasswordHandler.RequestReset)
			r.Post("/reset_password/{token}", cfg.PasswordHandler.ResetPassword)
		})
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))
		if cfg.Presence != nil {
			r.Use(authmw.Presence(cfg.Presence))
		}

		r.Get("/", cfg.FeedHandler.Index)
		r.Post("/", cfg.FeedHandler.CreatePost)
		r.Get("/index", cfg.FeedHandler.Index)
		r.Post("/index", cfg.FeedHandler.CreatePost)
		r.Get("/explore", cfg.FeedHandler.Explore)

		r.Get("/user/{username}", cfg.UserHandler.Profile)
		r.Get("/edit_profile", cfg.UserHandler.EditProfilePage)
		r.Post("/edit_profile", cfg.UserHandler.EditProfile)

		r.Post("/follow/{username}", cfg.FollowHandler.Follow)
		r.Post("/unfollow/{username}", cfg.FollowHandler.Unfollow)

		r.Post("/translate", cfg.TranslateHandler.Translate)

		r.Get("/logout", cfg.AuthHandler.Logout)
	})

	return r
}
