package handlers

import (
	"net/http"
	"time"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Playlists     PlaylistStore
	Subscriptions SubscriptionStore
	Tokens        TokenIssuer
	Media         MediaStorage
	Prober        DurationProber
	Limiter       RateLimiter
	SecureCookies bool
	NowFunc       func() time.Time
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Everything
// except health, register, login, and refresh-token sits behind the auth gate.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	gate := AuthGate{Tokens: deps.Tokens, Users: deps.Users}

	health := HealthHandler{}
	users := UserHandler{
		Users:         deps.Users,
		Tokens:        deps.Tokens,
		Media:         deps.Media,
		Limiter:       deps.Limiter,
		SecureCookies: deps.SecureCookies,
		NowFunc:       deps.NowFunc,
	}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Media: deps.Media, Prober: deps.Prober, NowFunc: deps.NowFunc}
	comments := CommentHandler{Comments: deps.Comments, NowFunc: deps.NowFunc}
	tweets := TweetHandler{Tweets: deps.Tweets, NowFunc: deps.NowFunc}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos}
	playlists := PlaylistHandler{Playlists: deps.Playlists, NowFunc: deps.NowFunc}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	dashboard := DashboardHandler{Videos: deps.Videos, Likes: deps.Likes, Subscriptions: deps.Subscriptions}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.RefreshToken)
	mux.HandleFunc("POST /api/v1/users/logout", gate.Wrap(users.Logout))
	mux.HandleFunc("POST /api/v1/users/change-password", gate.Wrap(users.ChangePassword))
	mux.HandleFunc("GET /api/v1/users/me", gate.Wrap(users.CurrentUser))
	mux.HandleFunc("PATCH /api/v1/users/me", gate.Wrap(users.UpdateAccount))
	mux.HandleFunc("PATCH /api/v1/users/me/avatar", gate.Wrap(users.UpdateAvatar))
	mux.HandleFunc("PATCH /api/v1/users/me/cover", gate.Wrap(users.UpdateCoverImage))
	mux.HandleFunc("GET /api/v1/users/channel/{username}", gate.Wrap(users.ChannelProfile))
	mux.HandleFunc("GET /api/v1/users/watch-history", gate.Wrap(users.WatchHistory))

	mux.HandleFunc("GET /api/v1/videos", gate.Wrap(videos.List))
	mux.HandleFunc("POST /api/v1/videos", gate.Wrap(videos.Publish))
	mux.HandleFunc("GET /api/v1/videos/{videoId}", gate.Wrap(videos.Get))
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}", gate.Wrap(videos.Update))
	mux.HandleFunc("DELETE /api/v1/videos/{videoId}", gate.Wrap(videos.Delete))
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}/toggle-publish", gate.Wrap(videos.TogglePublish))

	mux.HandleFunc("GET /api/v1/comments/video/{videoId}", gate.Wrap(comments.ListForVideo))
	mux.HandleFunc("POST /api/v1/comments/video/{videoId}", gate.Wrap(comments.Add))
	mux.HandleFunc("PATCH /api/v1/comments/{commentId}", gate.Wrap(comments.Update))
	mux.HandleFunc("DELETE /api/v1/comments/{commentId}", gate.Wrap(comments.Delete))

	mux.HandleFunc("POST /api/v1/tweets", gate.Wrap(tweets.Create))
	mux.HandleFunc("GET /api/v1/tweets", gate.Wrap(tweets.List))
	mux.HandleFunc("GET /api/v1/tweets/user/{userId}", gate.Wrap(tweets.ListForUser))
	mux.HandleFunc("PATCH /api/v1/tweets/{tweetId}", gate.Wrap(tweets.Update))
	mux.HandleFunc("DELETE /api/v1/tweets/{tweetId}", gate.Wrap(tweets.Delete))

	mux.HandleFunc("POST /api/v1/likes/toggle-video/{videoId}", gate.Wrap(likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/toggle-comment/{commentId}", gate.Wrap(likes.ToggleComment))
	mux.HandleFunc("POST /api/v1/likes/toggle-tweet/{tweetId}", gate.Wrap(likes.ToggleTweet))
	mux.HandleFunc("GET /api/v1/likes/liked-videos", gate.Wrap(likes.LikedVideos))

	mux.HandleFunc("POST /api/v1/playlists", gate.Wrap(playlists.Create))
	mux.HandleFunc("GET /api/v1/playlists/{playlistId}", gate.Wrap(playlists.Get))
	mux.HandleFunc("GET /api/v1/playlists/user/{userId}", gate.Wrap(playlists.ListForUser))
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistId}", gate.Wrap(playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}", gate.Wrap(playlists.Delete))
	mux.HandleFunc("POST /api/v1/playlists/{playlistId}/videos/{videoId}", gate.Wrap(playlists.AddVideo))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}/videos/{videoId}", gate.Wrap(playlists.RemoveVideo))

	mux.HandleFunc("POST /api/v1/subscriptions/toggle/{channelId}", gate.Wrap(subscriptions.Toggle))
	mux.HandleFunc("GET /api/v1/subscriptions/subscribers", gate.Wrap(subscriptions.Subscribers))
	mux.HandleFunc("GET /api/v1/subscriptions/subscribed", gate.Wrap(subscriptions.Subscribed))

	mux.HandleFunc("GET /api/v1/dashboard/stats", gate.Wrap(dashboard.Stats))
	mux.HandleFunc("GET /api/v1/dashboard/videos", gate.Wrap(dashboard.ChannelVideos))
}
