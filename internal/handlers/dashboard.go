package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// DashboardHandler implements the channel dashboard endpoints. All stats are
// scoped to the authenticated channel owner.
type DashboardHandler struct {
	Videos        VideoStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
}

// Stats handles GET /api/v1/dashboard/stats requests. Total likes counts
// likes received on the channel's videos.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	totalVideos, err := h.Videos.CountByOwner(ctx, principal.ID)
	if err != nil {
		logger.Error("dashboard video count failed", "error", err, "channelId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}

	totalViews, err := h.Videos.SumViewsByOwner(ctx, principal.ID)
	if err != nil {
		logger.Error("dashboard view sum failed", "error", err, "channelId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}

	totalLikes, err := h.Likes.CountForOwner(ctx, principal.ID)
	if err != nil {
		logger.Error("dashboard like count failed", "error", err, "channelId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}

	totalSubscribers, err := h.Subscriptions.CountForChannel(ctx, principal.ID)
	if err != nil {
		logger.Error("dashboard subscriber count failed", "error", err, "channelId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}

	stats := models.ChannelStats{
		SubscriberCount: totalSubscribers,
		VideoCount:      totalVideos,
		LikeCount:       totalLikes,
		ViewCount:       totalViews,
	}

	respondData(ctx, w, http.StatusOK, stats, "channel stats fetched successfully")
}

// ChannelVideos handles GET /api/v1/dashboard/videos requests, listing every video
// the channel has uploaded including unpublished ones.
func (h DashboardHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videos, err := h.Videos.ListByOwner(ctx, principal.ID)
	if err != nil {
		logging.FromContext(ctx).Error("dashboard video list failed", "error", err, "channelId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondData(ctx, w, http.StatusOK, videos, "channel videos fetched successfully")
}
