// Package translate proxies text to a machine translation service.
package translate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"microblog/internal/model"
)

// YandexEndpoint is the Yandex Cloud Translate v2 URL.
const YandexEndpoint = "https://translate.api.cloud.yandex.net/translate/v2/translate"

var (
	ErrTokenMissing    = errors.New("translation token is not configured")
	ErrFolderIDMissing = errors.New("translation folder id is not configured")
	// ErrUpstream is any non-success answer from the provider.
	ErrUpstream = model.ErrTranslationFailed
)

// StatusError is a non-200 answer from the provider. It wraps ErrUpstream.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrUpstream, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

// clientFault reports whether the request itself was rejected. Those
// answers say nothing about the provider's health.
func (e *StatusError) clientFault() bool {
	return e.Code >= 400 && e.Code < 500 &&
		e.Code != http.StatusRequestTimeout && e.Code != http.StatusTooManyRequests
}

// Translator translates text between ISO 639-1 languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

type yandexRequest struct {
	SourceLanguageCode string   `json:"sourceLanguageCode"`
	TargetLanguageCode string   `json:"targetLanguageCode"`
	Texts              []string `json:"texts"`
	FolderID           string   `json:"folderId"`
}

type yandexResponse struct {
	Translations []struct {
		Text                 string `json:"text"`
		DetectedLanguageCode string `json:"detectedLanguageCode"`
	} `json:"translations"`
}

// YandexClient calls Yandex Translate through a circuit breaker.
type YandexClient struct {
	token    string
	folderID string
	endpoint string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[string]
}

type Option func(*YandexClient)

// WithEndpoint overrides the API URL.
func WithEndpoint(url string) Option {
	return func(c *YandexClient) { c.endpoint = url }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *YandexClient) { c.http = hc }
}

func NewYandexClient(token, folderID string, opts ...Option) *YandexClient {
	c := &YandexClient{
		token:    token,
		folderID: folderID,
		endpoint: YandexEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker("yandex-translate")
	return c
}

func newBreaker(name string) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("component", "Translator").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
}

func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.clientFault()
}

func (c *YandexClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	if c.token == "" {
		return "", ErrTokenMissing
	}
	if c.folderID == "" {
		return "", ErrFolderIDMissing
	}

	return c.breaker.Execute(func() (string, error) {
		return c.do(ctx, text, source, target)
	})
}

func (c *YandexClient) do(ctx context.Context, text, source, target string) (string, error) {
	payload, err := json.Marshal(yandexRequest{
		SourceLanguageCode: source,
		TargetLanguageCode: target,
		Texts:              []string{text},
		FolderID:           c.folderID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call translate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode}
	}

	var out yandexResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Translations) == 0 {
		return "", fmt.Errorf("%w: empty translations", ErrUpstream)
	}
	return out.Translations[0].Text, nil
}
