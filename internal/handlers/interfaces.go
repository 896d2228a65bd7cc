package handlers

import (
	"context"

	"github.com/vidstream/backend/internal/accounts"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/relations"
	"github.com/vidstream/backend/internal/storage"
	"github.com/vidstream/backend/internal/videos"
	"github.com/vidstream/backend/internal/views"
)

// AccountService captures the account operations behind /users.
type AccountService interface {
	Register(ctx context.Context, in accounts.Registration) (models.User, error)
	Login(ctx context.Context, in accounts.Credentials) (models.User, models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID string) (models.User, error)
	UpdateAccount(ctx context.Context, userID, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, userID string, upload storage.Upload) (models.User, error)
	UpdateCover(ctx context.Context, userID string, upload storage.Upload) (models.User, error)
}

// VideoService publishes and maintains videos.
type VideoService interface {
	Publish(ctx context.Context, ownerID string, in videos.Draft) (models.Video, error)
	Update(ctx context.Context, callerID, videoID string, in videos.Changes) (models.Video, error)
	Delete(ctx context.Context, callerID, videoID string) error
	TogglePublish(ctx context.Context, callerID, videoID string) (models.Video, error)
}

// EngagementService covers comments, tweets and relation toggles.
type EngagementService interface {
	AddComment(ctx context.Context, callerID, videoID, content string) (models.Comment, error)
	UpdateComment(ctx context.Context, callerID, commentID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, callerID, commentID string) error
	CreateTweet(ctx context.Context, callerID, content string) (models.Tweet, error)
	UpdateTweet(ctx context.Context, callerID, tweetID, content string) (models.Tweet, error)
	DeleteTweet(ctx context.Context, callerID, tweetID string) error
	ToggleVideoLike(ctx context.Context, callerID, videoID string) (relations.State, error)
	ToggleCommentLike(ctx context.Context, callerID, commentID string) (relations.State, error)
	ToggleTweetLike(ctx context.Context, callerID, tweetID string) (relations.State, error)
	ToggleSubscription(ctx context.Context, callerID, channelID string) (relations.State, error)
}

// PlaylistService curates playlists.
type PlaylistService interface {
	Create(ctx context.Context, callerID, name, description string) (models.Playlist, error)
	Update(ctx context.Context, callerID, playlistID, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, callerID, playlistID string) error
	AddVideo(ctx context.Context, callerID, playlistID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, callerID, playlistID, videoID string) (models.Playlist, error)
}

// ViewBuilder assembles the read projections.
type ViewBuilder interface {
	VideoFeed(ctx context.Context, q views.FeedQuery, viewerID string) (views.Paged[views.FeedVideo], error)
	VideoDetail(ctx context.Context, videoID, viewerID string) (views.VideoDetail, error)
	VideoComments(ctx context.Context, videoID string, page views.Page, viewerID string) (views.Paged[views.CommentView], error)
	UserTweets(ctx context.Context, userID string, page views.Page, viewerID string) (views.Paged[views.TweetView], error)
	LikedVideos(ctx context.Context, viewerID string) ([]views.LikedVideoView, error)
	WatchHistory(ctx context.Context, viewerID string, page views.Page) (views.Paged[views.HistoryVideo], error)
	ChannelProfile(ctx context.Context, username, viewerID string) (views.ChannelProfile, error)
	ChannelSubscribers(ctx context.Context, channelID string, page views.Page, viewerID string) (views.Paged[views.SubscriberView], error)
	SubscribedChannels(ctx context.Context, subscriberID string, page views.Page, viewerID string) (views.Paged[views.SubscribedChannelView], error)
	ChannelStats(ctx context.Context, channelID string) (views.ChannelStats, error)
	ChannelVideos(ctx context.Context, channelID string, page views.Page) (views.Paged[views.DashboardVideo], error)
	PlaylistContents(ctx context.Context, playlistID string) (views.PlaylistView, error)
	UserPlaylists(ctx context.Context, userID string, page views.Page) (views.Paged[views.PlaylistSummary], error)
}

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}
