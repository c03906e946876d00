package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type stubUserStore struct {
	users   map[string]models.User
	profile models.ChannelProfile
	history []models.VideoWithOwner
	watches []string
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]models.User)}
}

func (s *stubUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *stubUserStore) FindByLogin(_ context.Context, login string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == login || user.Email == login {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *stubUserStore) UpdateProfile(_ context.Context, id, fullName, username string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	for otherID, other := range s.users {
		if otherID != id && other.Username == username {
			return models.User{}, repositories.ErrConflict
		}
	}
	user.FullName = fullName
	user.Username = username
	s.users[id] = user
	return user, nil
}

func (s *stubUserStore) UpdateAvatar(_ context.Context, id, avatarURL string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.Avatar = avatarURL
	s.users[id] = user
	return user, nil
}

func (s *stubUserStore) UpdateCoverImage(_ context.Context, id, coverURL string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.CoverImage = coverURL
	s.users[id] = user
	return user, nil
}

func (s *stubUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	s.users[id] = user
	return nil
}

func (s *stubUserStore) SaveRefreshToken(_ context.Context, id, refreshToken string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = refreshToken
	s.users[id] = user
	return nil
}

func (s *stubUserStore) ChannelProfile(_ context.Context, username, _ string) (models.ChannelProfile, error) {
	if s.profile.Username != username {
		return models.ChannelProfile{}, repositories.ErrNotFound
	}
	return s.profile, nil
}

func (s *stubUserStore) WatchHistory(_ context.Context, _ string) ([]models.VideoWithOwner, error) {
	return s.history, nil
}

func (s *stubUserStore) RecordWatch(_ context.Context, userID, videoID string) error {
	s.watches = append(s.watches, userID+":"+videoID)
	return nil
}

type stubMedia struct {
	saved []string
}

func (m *stubMedia) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.saved = append(m.saved, name)
	return "https://media.test/" + name, nil
}

func newTestTokens() *auth.TokenManager {
	return auth.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func requestWithPrincipal(req *http.Request, user models.User) *http.Request {
	return req.WithContext(withPrincipal(req.Context(), user))
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for key, filename := range files {
		part, err := writer.CreateFormFile(key, filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", key, err)
		}
		if _, err := part.Write([]byte("file-content")); err != nil {
			t.Fatalf("write form file %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func decodeEnvelope(t *testing.T, body io.Reader, data any) (int, string, bool) {
	t.Helper()

	var resp struct {
		StatusCode int             `json:"statusCode"`
		Data       json.RawMessage `json:"data"`
		Message    string          `json:"message"`
		Success    bool            `json:"success"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if data != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, data); err != nil {
			t.Fatalf("decode envelope data: %v", err)
		}
	}
	return resp.StatusCode, resp.Message, resp.Success
}

func TestUserHandlerRegister(t *testing.T) {
	store := newStubUserStore()
	media := &stubMedia{}
	handler := UserHandler{Users: store, Tokens: newTestTokens(), Media: media}

	body, contentType := multipartBody(t,
		map[string]string{
			"fullname": "Test User",
			"email":    "test@example.com",
			"username": "testuser",
			"password": "supersafe",
		},
		map[string]string{"avatar": "avatar.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	stored, err := store.FindByLogin(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("supersafe")) != nil {
		t.Fatal("stored password is not hashed")
	}
	if !strings.HasPrefix(stored.Avatar, "https://media.test/avatars/") {
		t.Fatalf("expected uploaded avatar url, got %q", stored.Avatar)
	}

	var profile models.PublicUser
	if _, _, success := decodeEnvelope(t, rec.Body, &profile); !success {
		t.Fatal("expected success envelope")
	}
	if profile.Username != "testuser" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestUserHandlerRegisterMissingAvatar(t *testing.T) {
	handler := UserHandler{Users: newStubUserStore(), Tokens: newTestTokens(), Media: &stubMedia{}}

	body, contentType := multipartBody(t,
		map[string]string{
			"fullname": "Test User",
			"email":    "test@example.com",
			"username": "testuser",
			"password": "supersafe",
		},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestUserHandlerLogin(t *testing.T) {
	store := newStubUserStore()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.users["user-1"] = models.User{ID: "user-1", Username: "ada", Email: "ada@example.com", Password: string(hashed)}

	handler := UserHandler{Users: store, Tokens: newTestTokens()}

	body, err := json.Marshal(loginRequest{Username: "ada", Password: "password123"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var resp loginResponse
	decodeEnvelope(t, rec.Body, &resp)
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp.Tokens)
	}

	if store.users["user-1"].RefreshToken != resp.Tokens.RefreshToken {
		t.Fatal("expected refresh token to be persisted")
	}

	cookies := rec.Result().Cookies()
	names := make(map[string]bool)
	for _, c := range cookies {
		names[c.Name] = true
		if !c.HttpOnly {
			t.Fatalf("expected cookie %s to be http only", c.Name)
		}
	}
	if !names["accessToken"] || !names["refreshToken"] {
		t.Fatalf("expected auth cookies, got %v", names)
	}
}

func TestUserHandlerLoginWrongPassword(t *testing.T) {
	store := newStubUserStore()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.users["user-1"] = models.User{ID: "user-1", Username: "ada", Password: string(hashed)}

	handler := UserHandler{Users: store, Tokens: newTestTokens()}

	body, err := json.Marshal(loginRequest{Username: "ada", Password: "wrong-password"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	_, message, success := decodeEnvelope(t, rec.Body, nil)
	if success || message != "invalid credentials" {
		t.Fatalf("unexpected error envelope: %q success=%v", message, success)
	}
}

func TestUserHandlerRefreshTokenReuse(t *testing.T) {
	store := newStubUserStore()
	tokens := newTestTokens()

	pair, err := tokens.IssuePair("user-1", "ada")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	store.users["user-1"] = models.User{ID: "user-1", Username: "ada", RefreshToken: "a-different-token"}

	handler := UserHandler{Users: store, Tokens: tokens}

	body, err := json.Marshal(refreshRequest{RefreshToken: pair.RefreshToken})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.RefreshToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 got %d", rec.Code)
	}
}

func TestUserHandlerChangePasswordMismatch(t *testing.T) {
	store := newStubUserStore()
	hashed, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{ID: "user-1", Username: "ada", Password: string(hashed)}
	store.users[user.ID] = user

	handler := UserHandler{Users: store, Tokens: newTestTokens()}

	body, err := json.Marshal(changePasswordRequest{
		OldPassword:     "old-password",
		NewPassword:     "new-password",
		ConfirmPassword: "other-password",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, requestWithPrincipal(req, user))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestUserHandlerChannelProfile(t *testing.T) {
	store := newStubUserStore()
	store.profile = models.ChannelProfile{
		PublicUser:      models.PublicUser{ID: "channel-1", Username: "grace"},
		SubscriberCount: 3,
		IsSubscribed:    true,
	}
	viewer := models.User{ID: "user-1", Username: "ada"}
	store.users[viewer.ID] = viewer

	handler := UserHandler{Users: store, Tokens: newTestTokens()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/grace", nil)
	req.SetPathValue("username", "grace")
	rec := httptest.NewRecorder()

	handler.ChannelProfile(rec, requestWithPrincipal(req, viewer))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var profile models.ChannelProfile
	decodeEnvelope(t, rec.Body, &profile)
	if profile.Username != "grace" || profile.SubscriberCount != 3 || !profile.IsSubscribed {
		t.Fatalf("unexpected profile %+v", profile)
	}
}
