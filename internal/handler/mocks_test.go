package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"microblog/internal/httputil"
	"microblog/internal/model"
	"microblog/internal/transport/http/middleware"
)

type mockAuthenticator struct {
	RegisterFunc     func(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	AuthenticateFunc func(ctx context.Context, username, password string) (*model.User, error)
}

func (m *mockAuthenticator) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	return m.RegisterFunc(ctx, req)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	return m.AuthenticateFunc(ctx, username, password)
}

type mockSessions struct {
	GenerateTokenPairFunc  func(ctx context.Context, userID int64) (*model.TokenPair, error)
	RefreshTokensFunc      func(ctx context.Context, raw string) (*model.TokenPair, int64, error)
	RevokeRefreshTokenFunc func(ctx context.Context, raw string) error
}

func (m *mockSessions) GenerateTokenPair(ctx context.Context, userID int64) (*model.TokenPair, error) {
	return m.GenerateTokenPairFunc(ctx, userID)
}

func (m *mockSessions) RefreshTokens(ctx context.Context, raw string) (*model.TokenPair, int64, error) {
	return m.RefreshTokensFunc(ctx, raw)
}

func (m *mockSessions) RevokeRefreshToken(ctx context.Context, raw string) error {
	return m.RevokeRefreshTokenFunc(ctx, raw)
}

type mockFeed struct {
	FollowedPostsFunc func(ctx context.Context, viewerID int64, page, perPage int) (model.Page[model.FeedPost], error)
}

func (m *mockFeed) FollowedPosts(ctx context.Context, viewerID int64, page, perPage int) (model.Page[model.FeedPost], error) {
	return m.FollowedPostsFunc(ctx, viewerID, page, perPage)
}

type mockPosts struct {
	CreateFunc  func(ctx context.Context, authorID int64, body string) (*model.Post, error)
	ListAllFunc func(ctx context.Context, page, perPage int) (model.Page[model.FeedPost], error)
}

func (m *mockPosts) Create(ctx context.Context, authorID int64, body string) (*model.Post, error) {
	return m.CreateFunc(ctx, authorID, body)
}

func (m *mockPosts) ListAll(ctx context.Context, page, perPage int) (model.Page[model.FeedPost], error) {
	return m.ListAllFunc(ctx, page, perPage)
}

type mockProfiles struct {
	GetByIDFunc       func(ctx context.Context, id int64) (*model.User, error)
	GetProfileFunc    func(ctx context.Context, viewerID int64, username string, page, perPage int) (*model.ProfileResponse, error)
	UpdateProfileFunc func(ctx context.Context, actorID int64, req *model.EditProfileRequest) (*model.User, error)
}

func (m *mockProfiles) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockProfiles) GetProfile(ctx context.Context, viewerID int64, username string, page, perPage int) (*model.ProfileResponse, error) {
	return m.GetProfileFunc(ctx, viewerID, username, page, perPage)
}

func (m *mockProfiles) UpdateProfile(ctx context.Context, actorID int64, req *model.EditProfileRequest) (*model.User, error) {
	return m.UpdateProfileFunc(ctx, actorID, req)
}

type mockFollows struct {
	FollowByUsernameFunc   func(ctx context.Context, followerID int64, username string) (*model.User, error)
	UnfollowByUsernameFunc func(ctx context.Context, followerID int64, username string) (*model.User, error)
}

func (m *mockFollows) FollowByUsername(ctx context.Context, followerID int64, username string) (*model.User, error) {
	return m.FollowByUsernameFunc(ctx, followerID, username)
}

func (m *mockFollows) UnfollowByUsername(ctx context.Context, followerID int64, username string) (*model.User, error) {
	return m.UnfollowByUsernameFunc(ctx, followerID, username)
}

type mockTranslator struct {
	TranslateFunc func(ctx context.Context, text, source, target string) string
}

func (m *mockTranslator) Translate(ctx context.Context, text, source, target string) string {
	return m.TranslateFunc(ctx, text, source, target)
}

type mockPasswords struct {
	RequestResetFunc  func(ctx context.Context, email string) error
	ResetPasswordFunc func(ctx context.Context, token, newPassword string) (*model.User, error)
}

func (m *mockPasswords) RequestReset(ctx context.Context, email string) error {
	return m.RequestResetFunc(ctx, email)
}

func (m *mockPasswords) ResetPassword(ctx context.Context, token, newPassword string) (*model.User, error) {
	return m.ResetPasswordFunc(ctx, token, newPassword)
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	r := httptest.NewRequest(method, target, strings.NewReader(string(payload)))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func formRequest(method, target string, form url.Values) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func asUser(r *http.Request, userID int64) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID))
}

func decodeFlash(t *testing.T, rec *httptest.ResponseRecorder) httputil.FlashResponse {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	var body httputil.FlashResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, body.Redirect, rec.Header().Get("Location"))
	return body
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
