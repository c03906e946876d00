package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type stubTweetStore struct {
	tweets map[string]models.Tweet
}

func newStubTweetStore() *stubTweetStore {
	return &stubTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *stubTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *stubTweetStore) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	var out []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			out = append(out, tweet)
		}
	}
	return out, nil
}

func (s *stubTweetStore) UpdateContent(_ context.Context, id, ownerID, content string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok || tweet.OwnerID != ownerID {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *stubTweetStore) Delete(_ context.Context, id, ownerID string) error {
	tweet, ok := s.tweets[id]
	if !ok || tweet.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

const testTweetID = "2f60bc90-7c5d-4c4e-af30-8b9c0d1e2f30"

func TestTweetHandlerCreate(t *testing.T) {
	store := newStubTweetStore()
	handler := TweetHandler{Tweets: store}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tweets", bytes.NewReader([]byte(`{"content":"hello world"}`)))
	rec := httptest.NewRecorder()

	handler.Create(rec, requestWithPrincipal(req, models.User{ID: "user-1"}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var tweet models.Tweet
	decodeEnvelope(t, rec.Body, &tweet)
	if tweet.Content != "hello world" || tweet.OwnerID != "user-1" {
		t.Fatalf("unexpected tweet %+v", tweet)
	}
	if len(store.tweets) != 1 {
		t.Fatalf("expected one stored tweet, got %d", len(store.tweets))
	}
}

func TestTweetHandlerCreateEmptyContent(t *testing.T) {
	handler := TweetHandler{Tweets: newStubTweetStore()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tweets", bytes.NewReader([]byte(`{"content":""}`)))
	rec := httptest.NewRecorder()

	handler.Create(rec, requestWithPrincipal(req, models.User{ID: "user-1"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestTweetHandlerListOwnTweets(t *testing.T) {
	store := newStubTweetStore()
	store.tweets["t1"] = models.Tweet{ID: "t1", OwnerID: "user-1", Content: "mine"}
	store.tweets["t2"] = models.Tweet{ID: "t2", OwnerID: "someone-else", Content: "theirs"}
	handler := TweetHandler{Tweets: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tweets", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, requestWithPrincipal(req, models.User{ID: "user-1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var listed []models.Tweet
	decodeEnvelope(t, rec.Body, &listed)
	if len(listed) != 1 || listed[0].Content != "mine" {
		t.Fatalf("expected only the caller's tweets, got %+v", listed)
	}
}

func TestTweetHandlerUpdateOwnerScoped(t *testing.T) {
	store := newStubTweetStore()
	store.tweets[testTweetID] = models.Tweet{ID: testTweetID, OwnerID: "user-1", Content: "original"}
	handler := TweetHandler{Tweets: store}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/tweets/"+testTweetID,
		bytes.NewReader([]byte(`{"content":"hijacked"}`)))
	req.SetPathValue("tweetId", testTweetID)
	rec := httptest.NewRecorder()

	handler.Update(rec, requestWithPrincipal(req, models.User{ID: "someone-else"}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
	if store.tweets[testTweetID].Content != "original" {
		t.Fatal("expected tweet to be unchanged")
	}
}

func TestTweetHandlerDelete(t *testing.T) {
	store := newStubTweetStore()
	store.tweets[testTweetID] = models.Tweet{ID: testTweetID, OwnerID: "user-1"}
	handler := TweetHandler{Tweets: store}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+testTweetID, nil)
	req.SetPathValue("tweetId", testTweetID)
	rec := httptest.NewRecorder()

	handler.Delete(rec, requestWithPrincipal(req, models.User{ID: "user-1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if len(store.tweets) != 0 {
		t.Fatal("expected tweet to be deleted")
	}
}
