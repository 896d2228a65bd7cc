package views

import (
	"time"

	"github.com/vidstream/backend/internal/models"
)

// OwnerSummary is the public face of a user embedded in other projections.
type OwnerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

func summarize(u models.User) OwnerSummary {
	return OwnerSummary{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.Avatar.URL}
}

// FeedVideo is one entry of a video listing.
type FeedVideo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Thumbnail   string       `json:"thumbnail"`
	Duration    float64      `json:"duration"`
	Views       int64        `json:"views"`
	CreatedAt   time.Time    `json:"createdAt"`
	Owner       OwnerSummary `json:"ownerDetails"`
	LikesCount  int          `json:"likesCount"`
	IsLiked     bool         `json:"isLiked"`
}

// DetailOwner is the channel block of a video detail.
type DetailOwner struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	FullName         string `json:"fullName"`
	Avatar           string `json:"avatar"`
	SubscribersCount int    `json:"subscribersCount"`
	IsSubscribed     bool   `json:"isSubscribed"`
}

// VideoDetail is the full projection of a single video.
type VideoDetail struct {
	ID          string      `json:"id"`
	VideoFile   string      `json:"videoFile"`
	Thumbnail   string      `json:"thumbnail"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    float64     `json:"duration"`
	Views       int64       `json:"views"`
	IsPublished bool        `json:"isPublished"`
	CreatedAt   time.Time   `json:"createdAt"`
	Owner       DetailOwner `json:"owner"`
	LikesCount  int         `json:"likesCount"`
	IsLiked     bool        `json:"isLiked"`
}

// CommentView is a comment with its author and like state.
type CommentView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Commenter  OwnerSummary `json:"commenter"`
	LikesCount int          `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// TweetView is a tweet with its author and like state.
type TweetView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Owner      OwnerSummary `json:"ownerDetails"`
	LikesCount int          `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// ChannelProfile is the public page of a channel.
type ChannelProfile struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullName"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int    `json:"subscribersCount"`
	ChannelsSubscribedToCount int    `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// SubscriberView is one subscriber of a channel.
type SubscriberView struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	FullName            string    `json:"fullName"`
	Avatar              string    `json:"avatar"`
	SubscribersCount    int       `json:"subscribersCount"`
	SubscribedToChannel bool      `json:"subscribedToChannel"`
	IsSubscribed        bool      `json:"isSubscribed"`
	SubscribedAt        time.Time `json:"subscribedAt"`
}

// VideoSummary is a compact reference to a video.
type VideoSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
}

func summarizeVideo(v models.Video) VideoSummary {
	return VideoSummary{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		VideoFile:   v.Media.URL,
		Thumbnail:   v.Thumbnail.URL,
		Duration:    v.Duration,
		Views:       v.Views,
		CreatedAt:   v.CreatedAt,
	}
}

// SubscribedChannelView is one channel a user subscribes to.
type SubscribedChannelView struct {
	ID               string        `json:"id"`
	Username         string        `json:"username"`
	FullName         string        `json:"fullName"`
	Avatar           string        `json:"avatar"`
	SubscribersCount int           `json:"subscribersCount"`
	IsSubscribed     bool          `json:"isSubscribed"`
	LatestVideo      *VideoSummary `json:"latestVideo"`
}

// LikedVideoView is a video the viewer liked.
type LikedVideoView struct {
	VideoSummary
	IsPublished bool         `json:"isPublished"`
	Owner       OwnerSummary `json:"ownerDetails"`
	LikedAt     time.Time    `json:"likedAt"`
}

// PlaylistView is a playlist with its published member videos.
type PlaylistView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	TotalVideos int            `json:"totalVideos"`
	TotalViews  int64          `json:"totalViews"`
	Owner       OwnerSummary   `json:"owner"`
	Videos      []VideoSummary `json:"videos"`
}

// PlaylistSummary is one entry of a user's playlist listing.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalVideos int       `json:"totalVideos"`
	TotalViews  int64     `json:"totalViews"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HistoryVideo is one watch history entry.
type HistoryVideo struct {
	VideoSummary
	Owner     OwnerSummary `json:"owner"`
	WatchedAt time.Time    `json:"watchedAt"`
}

// ChannelStats summarises a channel for its dashboard.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int   `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}

// DashboardVideo is one of the channel's own videos, drafts included.
type DashboardVideo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	LikesCount  int       `json:"likesCount"`
	CreatedAt   time.Time `json:"createdAt"`
}
