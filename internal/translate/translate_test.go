package translate

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYandexClient_Translate(t *testing.T) {
	var got yandexRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translations":[{"text":"hola"}]}`))
	}))
	defer srv.Close()

	c := NewYandexClient("tok", "folder", WithEndpoint(srv.URL))
	text, err := c.Translate(context.Background(), "hello", "en", "es")

	require.NoError(t, err)
	assert.Equal(t, "hola", text)
	assert.Equal(t, yandexRequest{
		SourceLanguageCode: "en",
		TargetLanguageCode: "es",
		Texts:              []string{"hello"},
		FolderID:           "folder",
	}, got)
}

func TestYandexClient_MissingSettings(t *testing.T) {
	_, err := NewYandexClient("", "folder").Translate(context.Background(), "x", "en", "es")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, err = NewYandexClient("tok", "").Translate(context.Background(), "x", "en", "es")
	assert.ErrorIs(t, err, ErrFolderIDMissing)
}

func TestYandexClient_UpstreamErrorTripsBreaker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewYandexClient("tok", "folder", WithEndpoint(srv.URL))
	for i := 0; i < 5; i++ {
		_, err := c.Translate(context.Background(), "x", "en", "es")
		assert.ErrorIs(t, err, ErrUpstream)
	}

	_, err := c.Translate(context.Background(), "x", "en", "es")
	assert.Error(t, err)
	assert.Equal(t, 5, calls, "open breaker must not reach the upstream")
}

func TestYandexClient_ClientErrorsKeepBreakerClosed(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 6 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{"text": "hola"}},
		})
	}))
	defer srv.Close()

	c := NewYandexClient("tok", "folder", WithEndpoint(srv.URL))
	for i := 0; i < 6; i++ {
		_, err := c.Translate(context.Background(), "x", "en", "xx")
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadRequest, se.Code)
		assert.ErrorIs(t, err, ErrUpstream)
	}

	got, err := c.Translate(context.Background(), "hello", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "hola", got)
	assert.Equal(t, 7, calls)
}

func TestCountsAsHealthy(t *testing.T) {
	assert.True(t, countsAsHealthy(nil))
	assert.True(t, countsAsHealthy(&StatusError{Code: http.StatusBadRequest}))
	assert.True(t, countsAsHealthy(context.Canceled))
	assert.False(t, countsAsHealthy(&StatusError{Code: http.StatusTooManyRequests}))
	assert.False(t, countsAsHealthy(&StatusError{Code: http.StatusBadGateway}))
	assert.False(t, countsAsHealthy(ErrUpstream))
}
