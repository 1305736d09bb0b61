package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/SundayYogurt/channel_service/internal/helper"
	"github.com/SundayYogurt/channel_service/internal/repository"
	"github.com/SundayYogurt/channel_service/internal/services"
	"github.com/SundayYogurt/channel_service/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUploader struct {
	fail bool
}

func (s *stubUploader) UploadBytes(_ context.Context, folder, filename string, _ []byte) (string, error) {
	if s.fail {
		return "", errors.New("media host unavailable")
	}
	return "https://res.example.com/" + folder + "/" + filename, nil
}

type testServer struct {
	app      *fiber.App
	db       *gorm.DB
	uploader *stubUploader
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := repository.NewUserRepository(db)
	hasher := helper.NewBcryptHasher(bcrypt.MinCost)
	auth := helper.SetupAuth("access-secret", time.Minute, "refresh-secret", time.Hour)
	uploader := &stubUploader{}

	sessions := services.NewSessionService(users, auth, hasher, nil, logger, services.SessionOptions{})
	profiles := services.NewProfileService(
		users,
		repository.NewChannelRepository(db),
		repository.NewWatchHistoryRepository(db),
		hasher,
		uploader,
		nil,
		logger,
		services.ProfileOptions{},
	)
	subs := services.NewSubscriptionService(repository.NewSubscriptionRepository(db), users, logger)

	app := fiber.New()
	h := NewUserHandler(sessions, profiles, subs, CookieConfig{Secure: true, AccessTTL: time.Minute, RefreshTTL: time.Hour}, 1<<20)
	h.SetupRoutes(app)

	return &testServer{app: app, db: db, uploader: uploader}
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, envelope, string) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp, env, string(raw)
}

func (s *testServer) register(t *testing.T, username, email, password string, withAvatar bool) (*http.Response, envelope, string) {
	t.Helper()
	fields := map[string]string{"username": username, "email": email, "password": password, "fullName": "Test " + username}
	files := map[string]string{}
	if withAvatar {
		files["avatar"] = "avatar.png"
	}
	return s.do(t, multipartRequest(t, http.MethodPost, "/api/v1/users/register", fields, files))
}

func (s *testServer) login(t *testing.T, username, password string) (access, refresh string) {
	t.Helper()
	req := jsonRequest(t, http.MethodPost, "/api/v1/users/login", map[string]string{"username": username, "password": password})
	resp, env, _ := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.AccessToken, data.RefreshToken
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, fields, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, name := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		require.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func cookieValue(resp *http.Response, name string) (*http.Cookie, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp, env, raw := s.register(t, "Alice", "a@x.com", "p1", true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, raw)
	assert.True(t, env.Success)
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "refreshToken")

	var user struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "https://res.example.com/avatars/avatar.jpg", user.Avatar)

	resp, env, _ = s.register(t, "alice2", "a@x.com", "p1", true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestRegisterEndpoint_Failures(t *testing.T) {
	s := newTestServer(t)

	resp, env, _ := s.register(t, "bob", "bob@example.com", "pw", false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Avatar image is required", env.Message)

	resp, _, _ = s.do(t, multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{"username": "bob", "email": "bob@example.com", "password": "pw", "fullName": "Bob"},
		map[string]string{"avatar": "avatar.gif"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	s.uploader.fail = true
	resp, env, _ = s.register(t, "bob", "bob@example.com", "pw", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Error while uploading avatar", env.Message)
}

func TestLoginEndpoint_SetsCookies(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@example.com", "p1", true)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/login", map[string]string{"email": "alice@example.com", "password": "p1"})
	resp, env, raw := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, raw)
	assert.Equal(t, "User logged in successfully", env.Message)

	for _, name := range []string{"accessToken", "refreshToken"} {
		c, ok := cookieValue(resp, name)
		require.True(t, ok, name)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.NotEmpty(t, c.Value)
	}

	req = jsonRequest(t, http.MethodPost, "/api/v1/users/login", map[string]string{"username": "alice", "password": "wrong"})
	resp, env, _ = s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid user credentials", env.Message)
}

func TestCurrentUserEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@example.com", "p1", true)
	access, _ := s.login(t, "alice", "p1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	resp, _, _ := s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, env, _ := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"username":"alice"`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	resp, _, _ = s.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = jsonRequest(t, http.MethodPatch, "/api/v1/users/me", map[string]string{"fullName": "Alice Liddell", "email": "alice@wonder.land"})
	req.Header.Set("Authorization", "Bearer "+access)
	resp, env, _ = s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"email":"alice@wonder.land"`)
}

func TestRefreshEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@example.com", "p1", true)
	_, refresh := s.login(t, "alice", "p1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	resp, _, raw := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, raw)
	rotated, ok := cookieValue(resp, "refreshToken")
	require.True(t, ok)
	assert.NotEqual(t, refresh, rotated.Value)

	// the superseded token is rejected, body form included
	req = jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", map[string]string{"refreshToken": refresh})
	resp, env, _ := s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Refresh token is expired or used", env.Message)

	req = jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", map[string]string{"refreshToken": rotated.Value})
	resp, _, _ = s.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	resp, _, _ = s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@example.com", "p1", true)
	access, refresh := s.login(t, "alice", "p1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, _, _ := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	c, ok := cookieValue(resp, "refreshToken")
	require.True(t, ok)
	assert.Empty(t, c.Value)
	assert.True(t, c.Expires.Before(time.Now()))

	req = jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", map[string]string{"refreshToken": refresh})
	resp, _, _ = s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChangePasswordEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@example.com", "old", true)
	access, _ := s.login(t, "alice", "old")

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/change-password", map[string]string{"oldPassword": "old", "newPassword": "new"})
	req.Header.Set("Authorization", "Bearer "+access)
	resp, env, _ := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, string(env.Data))

	s.login(t, "alice", "new")
}

func TestChannelAndSubscriptionEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "chan", "chan@example.com", "pw", true)
	s.register(t, "viewer", "viewer@example.com", "pw", true)
	access, _ := s.login(t, "viewer", "pw")

	channel := struct {
		ID               uint  `json:"id"`
		SubscribersCount int64 `json:"subscribersCount"`
		IsSubscribed     bool  `json:"isSubscribed"`
	}{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/chan", nil)
	resp, env, _ := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &channel))
	assert.False(t, channel.IsSubscribed)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/"+strconv.FormatUint(uint64(channel.ID), 10), nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, env, _ = s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"subscribed":true`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/CHAN", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	_, env, _ = s.do(t, req)
	require.NoError(t, json.Unmarshal(env.Data, &channel))
	assert.True(t, channel.IsSubscribed)
	assert.Equal(t, int64(1), channel.SubscribersCount)

	// a bad token on an optional route is treated as anonymous
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/chan", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	_, env, _ = s.do(t, req)
	require.NoError(t, json.Unmarshal(env.Data, &channel))
	assert.False(t, channel.IsSubscribed)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/nobody", nil)
	resp, _, _ = s.do(t, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/c/abc", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, _, _ = s.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAvatarAndHistoryEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@example.com", "pw", true)
	access, _ := s.login(t, "alice", "pw")

	req := multipartRequest(t, http.MethodPatch, "/api/v1/users/cover-image", nil, map[string]string{"coverImage": "banner.png"})
	req.Header.Set("Authorization", "Bearer "+access)
	resp, env, raw := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, raw)
	assert.Contains(t, string(env.Data), "covers/banner.jpg")

	req = multipartRequest(t, http.MethodPatch, "/api/v1/users/avatar", nil, nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, _, _ = s.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/history", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, env, _ = s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(env.Data)))
}
