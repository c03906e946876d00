package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// LikeHandler implements the like toggles for videos, comments, and tweets,
// plus the liked-videos listing.
type LikeHandler struct {
	Likes  LikeStore
	Videos VideoStore
}

// ToggleVideo handles POST /api/v1/likes/toggle-video/{videoId} requests.
// Liking your own video is rejected.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
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
	if video.OwnerID == principal.ID {
		respondError(ctx, w, http.StatusBadRequest, "you cannot like your own video")
		return
	}

	h.toggle(w, r, models.LikeTarget{Kind: models.LikeTargetVideo, ID: id}, principal.ID,
		"video liked successfully", "removed like from video successfully", "video not found")
}

// ToggleComment handles POST /api/v1/likes/toggle-comment/{commentId} requests.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id, ok := pathID(ctx, w, r, "commentId")
	if !ok {
		return
	}

	h.toggle(w, r, models.LikeTarget{Kind: models.LikeTargetComment, ID: id}, principal.ID,
		"comment liked successfully", "removed like from comment successfully", "comment not found")
}

// ToggleTweet handles POST /api/v1/likes/toggle-tweet/{tweetId} requests.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id, ok := pathID(ctx, w, r, "tweetId")
	if !ok {
		return
	}

	h.toggle(w, r, models.LikeTarget{Kind: models.LikeTargetTweet, ID: id}, principal.ID,
		"tweet liked successfully", "removed like from tweet successfully", "tweet not found")
}

// LikedVideos handles GET /api/v1/likes/liked-videos requests.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	page := pageFromQuery(r.URL.Query())
	videos, err := h.Likes.ListLikedVideos(ctx, principal.ID, page)
	if err != nil {
		logging.FromContext(ctx).Error("liked videos list failed", "error", err, "userId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if videos == nil {
		videos = []models.VideoWithOwner{}
	}

	respondData(ctx, w, http.StatusOK, videos, "liked videos fetched successfully")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget, userID,
	likedMsg, removedMsg, notFoundMsg string) {
	ctx := r.Context()

	like, liked, err := h.Likes.Toggle(ctx, target, userID)
	if err != nil {
		respondStoreError(ctx, w, err, notFoundMsg, "")
		return
	}

	if liked {
		respondData(ctx, w, http.StatusOK, like, likedMsg)
		return
	}
	respondData(ctx, w, http.StatusOK, toggleResult{Liked: false}, removedMsg)
}

type toggleResult struct {
	Liked bool `json:"liked"`
}
