package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// PlaylistHandler implements the playlist endpoints. A playlist holds an
// ordered set of video ids; adding a video already present is a no-op.
type PlaylistHandler struct {
	Playlists PlaylistStore
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists requests.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     principal.ID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "owner not found", "playlist name already exists")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Get handles GET /api/v1/playlists/{playlistId} requests.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := principalFromContext(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id, ok := pathID(ctx, w, r, "playlistId")
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// ListForUser handles GET /api/v1/playlists/user/{userId} requests.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := principalFromContext(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	userID, ok := pathID(ctx, w, r, "userId")
	if !ok {
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("playlist list failed", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{playlistId} requests. Only the
// owner may update; at least one field must be present.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id, ok := pathID(ctx, w, r, "playlistId")
	if !ok {
		return
	}

	var patch models.PlaylistPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patch.Name == nil && patch.Description == nil {
		respondError(ctx, w, http.StatusBadRequest, "at least one field is required")
		return
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		respondError(ctx, w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	playlist, err := h.Playlists.Update(ctx, id, principal.ID, patch)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "playlist name already exists")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{playlistId} requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id, ok := pathID(ctx, w, r, "playlistId")
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, id, principal.ID); err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "playlist deleted successfully")
}

// AddVideo handles POST /api/v1/playlists/{playlistId}/videos/{videoId}
// requests.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateVideos(w, r, h.Playlists.AddVideo, "video added to playlist successfully")
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistId}/videos/{videoId}
// requests.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateVideos(w, r, h.Playlists.RemoveVideo, "video removed from playlist successfully")
}

func (h PlaylistHandler) mutateVideos(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, playlistID, ownerID, videoID string) (models.Playlist, error), message string) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	playlistID, ok := pathID(ctx, w, r, "playlistId")
	if !ok {
		return
	}
	videoID, ok := pathID(ctx, w, r, "videoId")
	if !ok {
		return
	}

	playlist, err := apply(ctx, playlistID, principal.ID, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist or video not found", "")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, message)
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
