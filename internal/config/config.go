package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ErrMissingSecretKey is returned when SECRET_KEY is not configured.
var ErrMissingSecretKey = errors.New("SECRET_KEY must be set")

type Config struct {
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	ServerPort string
	// BaseURL prefixes links in outgoing mail.
	BaseURL string

	// SecretKey signs access tokens and password reset tokens.
	SecretKey string

	AccessTokenMaxAge  int
	RefreshTokenMaxAge int
	ResetTokenTTL      int

	PostsPerPage int

	RedisURL         string
	PresenceInterval time.Duration

	MailServer   string
	MailPort     int
	MailUseTLS   bool
	MailUsername string
	MailPassword string
	Admins       []string

	YandexTranslateToken    string
	YandexTranslateFolderID string

	CORSAllowedOrigins []string

	LogLevel  string
	LogPretty bool
	// LogFile, when set, also writes entries to a size-rotated file.
	LogFile string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Str("component", "Config").Msg("No .env file found or error loading it, relying on environment variables")
	}

	secretKey := os.Getenv("SECRET_KEY")
	if secretKey == "" {
		return nil, ErrMissingSecretKey
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	baseURL := strings.TrimRight(os.Getenv("BASE_URL"), "/")
	if baseURL == "" {
		baseURL = "http://localhost:" + serverPort
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      os.Getenv("DB_PORT"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBSSLMode:   sslMode,

		ServerPort: serverPort,
		BaseURL:    baseURL,

		SecretKey: secretKey,

		AccessTokenMaxAge:  positiveInt("ACCESS_TOKEN_MAX_AGE", 900),
		RefreshTokenMaxAge: positiveInt("REFRESH_TOKEN_MAX_AGE", 2592000),
		ResetTokenTTL:      positiveInt("RESET_TOKEN_TTL", 600),

		PostsPerPage: positiveInt("POSTS_PER_PAGE", 25),

		RedisURL:         os.Getenv("REDIS_URL"),
		PresenceInterval: time.Duration(nonNegativeInt("PRESENCE_INTERVAL", 0)) * time.Second,

		MailServer:   os.Getenv("MAIL_SERVER"),
		MailPort:     positiveInt("MAIL_PORT", 25),
		MailUseTLS:   os.Getenv("MAIL_USE_TLS") != "",
		MailUsername: os.Getenv("MAIL_USERNAME"),
		MailPassword: os.Getenv("MAIL_PASSWORD"),
		Admins:       splitList(os.Getenv("ADMINS")),

		YandexTranslateToken:    os.Getenv("YANDEX_TRANSLATE_TOKEN"),
		YandexTranslateFolderID: os.Getenv("YANDEX_TRANSLATE_FOLDER_ID"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogPretty: os.Getenv("LOG_PRETTY") == "true",
		LogFile:   os.Getenv("LOG_FILE"),
	}, nil
}

// MailSender is the From address for outgoing mail.
func (c *Config) MailSender() string {
	if len(c.Admins) > 0 {
		return c.Admins[0]
	}
	if c.MailServer != "" {
		return "no-reply@" + c.MailServer
	}
	return "no-reply@localhost"
}

// CookieSecure reports whether session cookies need the Secure flag.
func (c *Config) CookieSecure() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

func positiveInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// nonNegativeInt accepts an explicit 0, which callers treat as "off".
func nonNegativeInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
