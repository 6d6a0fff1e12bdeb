package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"microblog/internal/cache"
	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/handler"
	"microblog/internal/langdetect"
	"microblog/internal/logging"
	"microblog/internal/mailer"
	"microblog/internal/queue"
	"microblog/internal/redis"
	"microblog/internal/repository"
	"microblog/internal/service"
	"microblog/internal/translate"
	"microblog/internal/worker"
)

const (
	shutdownTimeout     = 10 * time.Second
	refreshTokenCleanup = time.Hour
	// expired refresh tokens are kept this long for reuse detection
	refreshTokenRetention = 7 * 24 * time.Hour
)

// Run loads configuration, wires every component and serves HTTP until
// SIGINT or SIGTERM.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	var logWriters []io.Writer
	if cfg.LogFile != "" {
		fw := logging.NewFileWriter(cfg.LogFile)
		defer fw.Close()
		logWriters = append(logWriters, fw)
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty, logWriters...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.DB); err != nil {
		return err
	}

	// 3. Optional Redis: presence throttle and mail queue
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(ctx, cfg.RedisURL, 3*time.Second)
		if err != nil {
			log.Warn().Str("component", "Server").Err(err).Msg("Redis unavailable, continuing without cache and mail queue")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	// 4. Repositories and services
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)

	postService := service.NewPostService(postRepo, langdetect.NewDetector(), cfg.PostsPerPage)
	userService := service.NewUserService(userRepo, followRepo, postService)
	followService := service.NewFollowService(followRepo, userRepo)
	feedService := service.NewFeedService(database.NewTxRunner(db), followRepo, postRepo, cfg.PostsPerPage)
	authService := service.NewAuthService(refreshRepo, cfg)
	resetTokens := service.NewResetTokenService(cfg.SecretKey, time.Duration(cfg.ResetTokenTTL)*time.Second, userRepo)
	translateService := service.NewTranslateService(
		translate.NewYandexClient(cfg.YandexTranslateToken, cfg.YandexTranslateFolderID))

	mail := newMailer(cfg)
	if cfg.MailServer != "" && len(cfg.Admins) > 0 {
		alerts := logging.NewAdminMailWriter(mail, "no-reply@"+cfg.MailServer, cfg.Admins)
		defer alerts.Close()
		logging.Setup(cfg.LogLevel, cfg.LogPretty, append(logWriters, alerts)...)
		log.Info().Str("component", "Server").Strs("admins", cfg.Admins).Msg("Error alerts will be mailed")
	}

	passwordService := service.NewPasswordService(userService, resetTokens, mail, service.PasswordServiceConfig{
		Sender:  cfg.MailSender(),
		BaseURL: cfg.BaseURL,
	})
	passwordService.SetSessionRevoker(authService)

	var presenceCache cache.PresenceCache
	var workers *worker.Manager
	if rdb != nil {
		presenceCache = cache.NewPresenceCache(rdb.Client)
		passwordService.SetPublisher(queue.NewPublisher(rdb.Client))

		workers = worker.NewManager(queue.NewConsumer(rdb.Client), worker.NewHandler(passwordService), worker.DefaultManagerConfig())
		if err := workers.Start(ctx); err != nil {
			return fmt.Errorf("failed to start mail workers: %w", err)
		}
	}
	presenceService := service.NewPresenceService(userService, presenceCache, cfg.PresenceInterval)

	go cleanupRefreshTokens(ctx, refreshRepo)

	// 5. Setup Server
	router := NewRouter(RouterConfig{
		AuthHandler:      handler.NewAuthHandler(userService, authService, cfg),
		FeedHandler:      handler.NewFeedHandler(feedService, postService),
		UserHandler:      handler.NewUserHandler(userService),
		FollowHandler:    handler.NewFollowHandler(followService),
		TranslateHandler: handler.NewTranslateHandler(translateService),
		PasswordHandler:  handler.NewPasswordHandler(passwordService),
		Presence:         presenceService,
		JWTSecret:        cfg.SecretKey,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("component", "Server").Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		workers.Stop()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Str("component", "Server").Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Str("component", "Server").Err(err).Msg("Server forced to shutdown")
	}
	workers.Stop()

	log.Info().Str("component", "Server").Msg("Server exited")
	return nil
}

func newMailer(cfg *config.Config) mailer.Mailer {
	if cfg.MailServer == "" {
		log.Info().Str("component", "Mailer").Msg("MAIL_SERVER not set, reset mails will be logged")
		return mailer.LogMailer{}
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.MailServer,
		Port:     cfg.MailPort,
		UseTLS:   cfg.MailUseTLS,
		Username: cfg.MailUsername,
		Password: cfg.MailPassword,
	})
}

// cleanupRefreshTokens periodically purges long-expired refresh tokens.
func cleanupRefreshTokens(ctx context.Context, repo repository.RefreshTokenRepository) {
	ticker := time.NewTicker(refreshTokenCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, refreshTokenRetention)
			if err != nil {
				log.Warn().Str("component", "Server").Err(err).Msg("refresh token cleanup failed")
				continue
			}
			if n > 0 {
				log.Info().Str("component", "Server").Int64("deleted", n).Msg("expired refresh tokens removed")
			}
		}
	}
}
