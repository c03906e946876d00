package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// VideoHandler implements the video catalog endpoints: publish, fetch, search,
// update, delete, and publish toggling.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	Media   MediaStorage
	Prober  DurationProber
	NowFunc func() time.Time
}

// List handles GET /api/v1/videos requests. Results include the caller's own
// unpublished videos but only published videos from other channels.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	page := pageFromQuery(r.URL.Query())
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	videos, err := h.Videos.Search(ctx, query, principal.ID, page)
	if err != nil {
		logging.FromContext(ctx).Error("video search failed", "error", err, "query", query)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondData(ctx, w, http.StatusOK, videos, "videos fetched successfully")
}

// Publish handles POST /api/v1/videos requests. The uploaded video file is
// spooled to disk so its duration can be probed before the object store upload.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title and description are required")
		return
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video file is required")
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
		return
	}
	defer thumbFile.Close()

	duration, videoURL, err := h.storeVideoFile(ctx, videoFile, videoHeader.Filename, videoHeader.Header.Get("Content-Type"))
	if err != nil {
		logger.Error("video upload failed", "error", err, "title", title)
		respondError(ctx, w, http.StatusInternalServerError, "error while uploading video")
		return
	}

	thumbKey := "thumbnails/" + uuid.NewString() + extensionOf(thumbHeader.Filename)
	thumbURL, err := h.Media.Save(ctx, thumbKey, thumbHeader.Header.Get("Content-Type"), thumbFile)
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err, "title", title)
		respondError(ctx, w, http.StatusInternalServerError, "error while uploading thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     principal.ID,
		Title:       title,
		Description: description,
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Duration:    duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("video create failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to publish video")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "video published successfully")
}

// Get handles GET /api/v1/videos/{videoId} requests. Fetching a video records
// a view and a watch history entry for the caller. Unpublished videos are
// visible only to their owner.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id, ok := pathID(ctx, w, r, "videoId")
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "")
		return
	}

	if !video.IsPublished && video.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	if err := h.Users.RecordWatch(ctx, principal.ID, video.ID); err != nil {
		logging.FromContext(ctx).Error("failed to record watch", "error", err, "videoId", video.ID)
	} else {
		video.Views++
	}

	respondData(ctx, w, http.StatusOK, video, "video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{videoId} requests. Only the owner can
// update a video; at least one field must be present.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id, ok := pathID(ctx, w, r, "videoId")
	if !ok {
		return
	}

	var patch models.VideoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patch.Title == nil && patch.Description == nil && patch.Thumbnail == nil {
		respondError(ctx, w, http.StatusBadRequest, "at least one field is required")
		return
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		respondError(ctx, w, http.StatusBadRequest, "title cannot be empty")
		return
	}

	video, err := h.Videos.UpdateDetails(ctx, id, principal.ID, patch)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId} requests.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id, ok := pathID(ctx, w, r, "videoId")
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, id, principal.ID); err != nil {
		respondStoreError(ctx, w, err, "video not found", "")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/{videoId}/toggle-publish requests.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id, ok := pathID(ctx, w, r, "videoId")
	if !ok {
		return
	}

	video, err := h.Videos.TogglePublish(ctx, id, principal.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "")
		return
	}

	message := "video unpublished successfully"
	if video.IsPublished {
		message = "video published successfully"
	}
	respondData(ctx, w, http.StatusOK, video, message)
}

// storeVideoFile spools the upload to a temp file, probes its duration, and
// streams it to the object store. The temp file is always removed.
func (h VideoHandler) storeVideoFile(ctx context.Context, file io.Reader, filename, contentType string) (float64, string, error) {
	ctx, span := logging.StartSpan(ctx, "video.upload")
	defer span.End()

	tmp, err := os.CreateTemp("", "vidtube-upload-*")
	if err != nil {
		return 0, "", err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		return 0, "", err
	}

	duration, err := h.Prober.Probe(ctx, tmp.Name())
	if err != nil {
		return 0, "", err
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return 0, "", err
	}

	key := "videos/" + uuid.NewString() + extensionOf(filename)
	url, err := h.Media.Save(ctx, key, contentType, tmp)
	if err != nil {
		return 0, "", err
	}

	return duration, url, nil
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
