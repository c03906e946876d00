package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const maxUploadMemory = 32 << 20

// UserHandler implements registration, authentication, and profile endpoints.
type UserHandler struct {
	Users         UserStore
	Tokens        TokenIssuer
	Media         MediaStorage
	Limiter       RateLimiter
	SecureCookies bool
	NowFunc       func() time.Time
}

// Register handles POST /api/v1/users/register requests. The avatar upload is
// required, the cover image optional.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many registration attempts")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullname"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		respondError(ctx, w, http.StatusBadRequest, "all fields are required")
		return
	}

	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	if len(password) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	avatarURL, found, err := h.uploadFormFile(r, "avatar", "avatars")
	if err != nil {
		logger.Error("register avatar upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "error while uploading avatar")
		return
	}
	if !found {
		respondError(ctx, w, http.StatusBadRequest, "avatar file is required")
		return
	}

	coverURL, _, err := h.uploadFormFile(r, "coverImage", "covers")
	if err != nil {
		logger.Error("register cover upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "error while uploading cover image")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	now := h.now()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   string(hashed),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "username or email already exists")
			return
		}
		logger.Error("register failed to create user", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create account")
		return
	}

	respondData(ctx, w, http.StatusCreated, user.Public(), "user registered successfully")
}

// Login handles POST /api/v1/users/login requests. Either username or email
// identifies the account.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	login := strings.TrimSpace(strings.ToLower(req.Username))
	if login == "" {
		login = strings.TrimSpace(strings.ToLower(req.Email))
	}
	if login == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "both login and password are required")
		return
	}

	user, err := h.Users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusBadRequest, "invalid credentials")
			return
		}
		logger.Error("login user lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid credentials")
		return
	}

	tokens, err := h.issueAndPersist(r, w, user)
	if err != nil {
		logger.Error("login failed to issue tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondData(ctx, w, http.StatusOK, loginResponse{User: user.Public(), Tokens: tokens}, "user logged in successfully")
}

// Logout handles POST /api/v1/users/logout requests. Clears the persisted
// refresh token and the client-held cookies.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.Users.SaveRefreshToken(ctx, principal.ID, ""); err != nil {
		logging.FromContext(ctx).Error("logout failed to clear refresh token", "error", err, "userId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}

	h.clearAuthCookies(w)
	respondData(ctx, w, http.StatusOK, struct{}{}, "user logged out")
}

// RefreshToken handles POST /api/v1/users/refresh-token requests. The incoming
// token must verify and still match the one persisted on the user record; both
// tokens are rotated on success.
func (h UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	incoming := refreshTokenFromRequest(r)
	if incoming == "" {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	claims, err := h.Tokens.VerifyRefresh(incoming)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			respondError(ctx, w, http.StatusUnauthorized, "refresh token expired")
			return
		}
		respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.Users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		logger.Error("refresh user lookup failed", "error", err, "userId", claims.Subject)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}

	if user.RefreshToken == "" || user.RefreshToken != incoming {
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is expired or already used")
		return
	}

	tokens, err := h.issueAndPersist(r, w, user)
	if err != nil {
		logger.Error("refresh failed to issue tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to refresh session")
		return
	}

	respondData(ctx, w, http.StatusOK, tokens, "access token refreshed")
}

// ChangePassword handles POST /api/v1/users/change-password requests.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		respondError(ctx, w, http.StatusBadRequest, "all fields are required")
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		respondError(ctx, w, http.StatusBadRequest, "password mismatch")
		return
	}

	if len(req.NewPassword) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.Password), []byte(req.OldPassword)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid old password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logging.FromContext(ctx).Error("change password failed to hash", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	if err := h.Users.UpdatePassword(ctx, principal.ID, string(hashed)); err != nil {
		respondStoreError(ctx, w, err, "user not found", "")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "password updated successfully")
}

// CurrentUser handles GET /api/v1/users/me requests.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	respondData(ctx, w, http.StatusOK, principal, "current user fetched successfully")
}

// UpdateAccount handles PATCH /api/v1/users/me requests.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	username := strings.TrimSpace(strings.ToLower(req.Username))
	if fullName == "" || username == "" {
		respondError(ctx, w, http.StatusBadRequest, "fullname and username are required")
		return
	}

	user, err := h.Users.UpdateProfile(ctx, principal.ID, fullName, username)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "username already exists")
		return
	}

	respondData(ctx, w, http.StatusOK, user, "user details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar requests.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatars", h.Users.UpdateAvatar, "avatar updated successfully")
}

// UpdateCoverImage handles PATCH /api/v1/users/me/cover requests.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "covers", h.Users.UpdateCoverImage, "cover image updated successfully")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field, folder string,
	apply func(ctx context.Context, id, url string) (models.User, error), message string) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	url, found, err := h.uploadFormFile(r, field, folder)
	if err != nil {
		logging.FromContext(ctx).Error("image upload failed", "error", err, "field", field)
		respondError(ctx, w, http.StatusInternalServerError, "error while uploading "+field)
		return
	}
	if !found {
		respondError(ctx, w, http.StatusBadRequest, field+" file is missing")
		return
	}

	user, err := apply(ctx, principal.ID, url)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "")
		return
	}

	respondData(ctx, w, http.StatusOK, user, message)
}

// ChannelProfile handles GET /api/v1/users/channel/{username} requests.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	username := strings.TrimSpace(strings.ToLower(r.PathValue("username")))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, principal.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel does not exist", "")
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel fetched successfully")
}

// WatchHistory handles GET /api/v1/users/watch-history requests.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	history, err := h.Users.WatchHistory(ctx, principal.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "")
		return
	}
	if history == nil {
		history = []models.VideoWithOwner{}
	}

	respondData(ctx, w, http.StatusOK, history, "watch history fetched successfully")
}

func (h UserHandler) issueAndPersist(r *http.Request, w http.ResponseWriter, user models.User) (models.TokenPair, error) {
	tokens, err := h.Tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := h.Users.SaveRefreshToken(r.Context(), user.ID, tokens.RefreshToken); err != nil {
		return models.TokenPair{}, err
	}

	h.setAuthCookies(w, tokens)
	return tokens, nil
}

func (h UserHandler) setAuthCookies(w http.ResponseWriter, tokens models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h UserHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.SecureCookies,
		})
	}
}

func (h UserHandler) uploadFormFile(r *http.Request, field, folder string) (string, bool, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", false, nil
		}
		return "", false, err
	}
	defer file.Close()

	key := folder + "/" + uuid.NewString() + extensionOf(header.Filename)
	url, err := h.Media.Save(r.Context(), key, header.Header.Get("Content-Type"), file)
	if err != nil {
		return "", true, err
	}

	return url, true, nil
}

func extensionOf(filename string) string {
	if idx := strings.LastIndexByte(filename, '.'); idx >= 0 {
		return filename[idx:]
	}
	return ""
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return strings.TrimSpace(req.RefreshToken)
	}

	return ""
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User   models.PublicUser `json:"user"`
	Tokens models.TokenPair  `json:"tokens"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullname"`
	Username string `json:"username"`
}
