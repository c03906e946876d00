package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

type stubLikeStore struct {
	likes      map[string]models.Like
	liked      []models.VideoWithOwner
	ownerLikes int64
}

func newStubLikeStore() *stubLikeStore {
	return &stubLikeStore{likes: make(map[string]models.Like)}
}

func (s *stubLikeStore) Toggle(_ context.Context, target models.LikeTarget, userID string) (models.Like, bool, error) {
	key := string(target.Kind) + ":" + target.ID + ":" + userID
	if _, exists := s.likes[key]; exists {
		delete(s.likes, key)
		return models.Like{Target: target, LikedBy: userID}, false, nil
	}
	like := models.Like{ID: uuid.NewString(), Target: target, LikedBy: userID}
	s.likes[key] = like
	return like, true, nil
}

func (s *stubLikeStore) ListLikedVideos(_ context.Context, _ string, _ models.Page) ([]models.VideoWithOwner, error) {
	return s.liked, nil
}

func (s *stubLikeStore) CountForOwner(_ context.Context, _ string) (int64, error) {
	return s.ownerLikes, nil
}

func toggleVideoLike(t *testing.T, handler LikeHandler, videoID string, user models.User) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle-video/"+videoID, nil)
	req.SetPathValue("videoId", videoID)
	rec := httptest.NewRecorder()

	handler.ToggleVideo(rec, requestWithPrincipal(req, user))
	return rec
}

func TestLikeHandlerToggleVideoPair(t *testing.T) {
	likes := newStubLikeStore()
	videos := newStubVideoStore()
	video := models.Video{ID: "0d4f9a7e-5a3b-4a2c-8d1e-6f7a8b9c0d1e", OwnerID: "owner-1", IsPublished: true}
	videos.videos[video.ID] = video
	user := models.User{ID: "viewer-1", Username: "grace"}

	handler := LikeHandler{Likes: likes, Videos: videos}

	rec := toggleVideoLike(t, handler, video.ID, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}
	_, message, _ := decodeEnvelope(t, rec.Body, nil)
	if message != "video liked successfully" {
		t.Fatalf("unexpected message %q", message)
	}
	if len(likes.likes) != 1 {
		t.Fatalf("expected one like, got %d", len(likes.likes))
	}

	rec = toggleVideoLike(t, handler, video.ID, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	_, message, _ = decodeEnvelope(t, rec.Body, nil)
	if message != "removed like from video successfully" {
		t.Fatalf("unexpected message %q", message)
	}
	if len(likes.likes) != 0 {
		t.Fatalf("expected like to be removed, got %d", len(likes.likes))
	}
}

func TestLikeHandlerToggleOwnVideoRejected(t *testing.T) {
	likes := newStubLikeStore()
	videos := newStubVideoStore()
	video := models.Video{ID: "0d4f9a7e-5a3b-4a2c-8d1e-6f7a8b9c0d1e", OwnerID: "owner-1", IsPublished: true}
	videos.videos[video.ID] = video

	handler := LikeHandler{Likes: likes, Videos: videos}

	rec := toggleVideoLike(t, handler, video.ID, models.User{ID: "owner-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	if len(likes.likes) != 0 {
		t.Fatal("expected no like to be recorded")
	}
}

func TestLikeHandlerToggleMissingVideo(t *testing.T) {
	handler := LikeHandler{Likes: newStubLikeStore(), Videos: newStubVideoStore()}

	rec := toggleVideoLike(t, handler, "0d4f9a7e-5a3b-4a2c-8d1e-6f7a8b9c0d1e", models.User{ID: "viewer-1"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestLikeHandlerLikedVideos(t *testing.T) {
	likes := newStubLikeStore()
	likes.liked = []models.VideoWithOwner{
		{Video: models.Video{ID: "0d4f9a7e-5a3b-4a2c-8d1e-6f7a8b9c0d1e", Title: "Liked"}},
	}

	handler := LikeHandler{Likes: likes, Videos: newStubVideoStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/likes/liked-videos", nil)
	rec := httptest.NewRecorder()

	handler.LikedVideos(rec, requestWithPrincipal(req, models.User{ID: "viewer-1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var listed []models.VideoWithOwner
	decodeEnvelope(t, rec.Body, &listed)
	if len(listed) != 1 || listed[0].Title != "Liked" {
		t.Fatalf("unexpected liked videos %+v", listed)
	}
}
