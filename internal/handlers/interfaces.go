package handlers

import (
	"context"
	"io"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, fullName, username string) (models.User, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) (models.User, error)
	UpdateCoverImage(ctx context.Context, id, coverURL string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SaveRefreshToken(ctx context.Context, id, refreshToken string) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
	RecordWatch(ctx context.Context, userID, videoID string) error
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Search(ctx context.Context, query, viewerID string, page models.Page) ([]models.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	UpdateDetails(ctx context.Context, id, ownerID string, patch models.VideoPatch) (models.Video, error)
	Delete(ctx context.Context, id, ownerID string) error
	TogglePublish(ctx context.Context, id, ownerID string) (models.Video, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	SumViewsByOwner(ctx context.Context, ownerID string) (int64, error)
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	ListForVideo(ctx context.Context, videoID string, page models.Page) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id, ownerID, content string) (models.Comment, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, id, ownerID, content string) (models.Tweet, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// LikeStore captures the atomic like toggle and its read views.
type LikeStore interface {
	Toggle(ctx context.Context, target models.LikeTarget, userID string) (models.Like, bool, error)
	ListLikedVideos(ctx context.Context, userID string, page models.Page) ([]models.VideoWithOwner, error)
	CountForOwner(ctx context.Context, ownerID string) (int64, error)
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, id, ownerID string, patch models.PlaylistPatch) (models.Playlist, error)
	Delete(ctx context.Context, id, ownerID string) error
	AddVideo(ctx context.Context, playlistID, ownerID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, playlistID, ownerID, videoID string) (models.Playlist, error)
}

// SubscriptionStore captures the subscription toggle and channel listings.
type SubscriptionStore interface {
	Toggle(ctx context.Context, channelID, subscriberID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.PublicUser, error)
	ListSubscribedTo(ctx context.Context, subscriberID string) ([]models.PublicUser, error)
	CountForChannel(ctx context.Context, channelID string) (int64, error)
}

// TokenIssuer issues and verifies the access/refresh token pair.
type TokenIssuer interface {
	IssuePair(userID, username string) (models.TokenPair, error)
	VerifyAccess(token string) (auth.Claims, error)
	VerifyRefresh(token string) (auth.Claims, error)
}

// MediaStorage uploads media content and returns a durable public URL.
type MediaStorage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// DurationProber resolves the duration of a local media file in seconds.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}
