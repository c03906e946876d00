package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type stubPlaylistStore struct {
	playlists map[string]models.Playlist
}

func newStubPlaylistStore() *stubPlaylistStore {
	return &stubPlaylistStore{playlists: make(map[string]models.Playlist)}
}

func (s *stubPlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	for _, existing := range s.playlists {
		if existing.Name == playlist.Name {
			return repositories.ErrConflict
		}
	}
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *stubPlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *stubPlaylistStore) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == ownerID {
			out = append(out, playlist)
		}
	}
	return out, nil
}

func (s *stubPlaylistStore) Update(_ context.Context, id, ownerID string, patch models.PlaylistPatch) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok || playlist.OwnerID != ownerID {
		return models.Playlist{}, repositories.ErrNotFound
	}
	if patch.Name != nil {
		playlist.Name = *patch.Name
	}
	if patch.Description != nil {
		playlist.Description = *patch.Description
	}
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *stubPlaylistStore) Delete(_ context.Context, id, ownerID string) error {
	playlist, ok := s.playlists[id]
	if !ok || playlist.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *stubPlaylistStore) AddVideo(_ context.Context, playlistID, ownerID, videoID string) (models.Playlist, error) {
	playlist, ok := s.playlists[playlistID]
	if !ok || playlist.OwnerID != ownerID {
		return models.Playlist{}, repositories.ErrNotFound
	}
	if !slices.Contains(playlist.VideoIDs, videoID) {
		playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	}
	s.playlists[playlistID] = playlist
	return playlist, nil
}

func (s *stubPlaylistStore) RemoveVideo(_ context.Context, playlistID, ownerID, videoID string) (models.Playlist, error) {
	playlist, ok := s.playlists[playlistID]
	if !ok || playlist.OwnerID != ownerID {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.VideoIDs = slices.DeleteFunc(playlist.VideoIDs, func(id string) bool { return id == videoID })
	s.playlists[playlistID] = playlist
	return playlist, nil
}

const testPlaylistID = "3a71cd01-8d6e-4d5f-b041-9c0d1e2f3041"

func TestPlaylistHandlerCreate(t *testing.T) {
	store := newStubPlaylistStore()
	handler := PlaylistHandler{Playlists: store}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists",
		bytes.NewReader([]byte(`{"name":"Favorites","description":"the good ones"}`)))
	rec := httptest.NewRecorder()

	handler.Create(rec, requestWithPrincipal(req, models.User{ID: "user-1"}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var playlist models.Playlist
	decodeEnvelope(t, rec.Body, &playlist)
	if playlist.Name != "Favorites" || playlist.OwnerID != "user-1" {
		t.Fatalf("unexpected playlist %+v", playlist)
	}
	if playlist.VideoIDs == nil || len(playlist.VideoIDs) != 0 {
		t.Fatalf("expected empty video list, got %v", playlist.VideoIDs)
	}
}

func TestPlaylistHandlerCreateDuplicateName(t *testing.T) {
	store := newStubPlaylistStore()
	store.playlists[testPlaylistID] = models.Playlist{ID: testPlaylistID, OwnerID: "user-2", Name: "Favorites"}
	handler := PlaylistHandler{Playlists: store}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists",
		bytes.NewReader([]byte(`{"name":"Favorites"}`)))
	rec := httptest.NewRecorder()

	handler.Create(rec, requestWithPrincipal(req, models.User{ID: "user-1"}))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 got %d", rec.Code)
	}
}

func TestPlaylistHandlerAddVideoIdempotent(t *testing.T) {
	store := newStubPlaylistStore()
	store.playlists[testPlaylistID] = models.Playlist{ID: testPlaylistID, OwnerID: "user-1", Name: "Favorites", VideoIDs: []string{}}
	handler := PlaylistHandler{Playlists: store}
	user := models.User{ID: "user-1"}

	addVideo := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost,
			"/api/v1/playlists/"+testPlaylistID+"/videos/"+testVideoID, nil)
		req.SetPathValue("playlistId", testPlaylistID)
		req.SetPathValue("videoId", testVideoID)
		rec := httptest.NewRecorder()
		handler.AddVideo(rec, requestWithPrincipal(req, user))
		return rec
	}

	if rec := addVideo(); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}
	rec := addVideo()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected repeated add to succeed, got %d", rec.Code)
	}

	var playlist models.Playlist
	decodeEnvelope(t, rec.Body, &playlist)
	if len(playlist.VideoIDs) != 1 {
		t.Fatalf("expected a single membership, got %v", playlist.VideoIDs)
	}
}

func TestPlaylistHandlerRemoveVideo(t *testing.T) {
	store := newStubPlaylistStore()
	store.playlists[testPlaylistID] = models.Playlist{
		ID: testPlaylistID, OwnerID: "user-1", Name: "Favorites", VideoIDs: []string{testVideoID},
	}
	handler := PlaylistHandler{Playlists: store}

	req := httptest.NewRequest(http.MethodDelete,
		"/api/v1/playlists/"+testPlaylistID+"/videos/"+testVideoID, nil)
	req.SetPathValue("playlistId", testPlaylistID)
	req.SetPathValue("videoId", testVideoID)
	rec := httptest.NewRecorder()

	handler.RemoveVideo(rec, requestWithPrincipal(req, models.User{ID: "user-1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var playlist models.Playlist
	decodeEnvelope(t, rec.Body, &playlist)
	if len(playlist.VideoIDs) != 0 {
		t.Fatalf("expected video to be removed, got %v", playlist.VideoIDs)
	}
}

func TestPlaylistHandlerUpdateRequiresField(t *testing.T) {
	handler := PlaylistHandler{Playlists: newStubPlaylistStore()}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/"+testPlaylistID, bytes.NewReader([]byte(`{}`)))
	req.SetPathValue("playlistId", testPlaylistID)
	rec := httptest.NewRecorder()

	handler.Update(rec, requestWithPrincipal(req, models.User{ID: "user-1"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}
