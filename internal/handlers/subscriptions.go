package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// SubscriptionHandler implements the channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
}

// Toggle handles POST /api/v1/subscriptions/toggle/{channelId} requests.
// Subscribing to your own channel is rejected.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channelID, ok := pathID(ctx, w, r, "channelId")
	if !ok {
		return
	}

	if channelID == principal.ID {
		respondError(ctx, w, http.StatusBadRequest, "you cannot subscribe to your own channel")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, channelID, principal.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel does not exist", "")
		return
	}

	message := "unsubscribed from channel successfully"
	if subscribed {
		message = "subscribed to channel successfully"
	}
	respondData(ctx, w, http.StatusOK, subscriptionState{Subscribed: subscribed}, message)
}

// Subscribers handles GET /api/v1/subscriptions/subscribers requests, listing
// the users subscribed to the caller's channel.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	users, err := h.Subscriptions.ListSubscribers(ctx, principal.ID)
	if err != nil {
		logging.FromContext(ctx).Error("subscriber list failed", "error", err, "channelId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if users == nil {
		users = []models.PublicUser{}
	}

	respondData(ctx, w, http.StatusOK, users, "subscribers fetched successfully")
}

// Subscribed handles GET /api/v1/subscriptions/subscribed requests, listing
// the channels the caller subscribes to.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channels, err := h.Subscriptions.ListSubscribedTo(ctx, principal.ID)
	if err != nil {
		logging.FromContext(ctx).Error("subscribed channel list failed", "error", err, "subscriberId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if channels == nil {
		channels = []models.PublicUser{}
	}

	respondData(ctx, w, http.StatusOK, channels, "subscribed channels fetched successfully")
}

type subscriptionState struct {
	Subscribed bool `json:"subscribed"`
}
