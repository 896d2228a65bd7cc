package models

import "time"

// VideoQuery filters and orders a listing of videos.
type VideoQuery struct {
	OwnerID       string
	Title         string
	SortBy        string
	Ascending     bool
	PublishedOnly bool
	Offset        int
	Limit         int
}

// Sortable video columns accepted by VideoQuery.SortBy.
const (
	SortByCreatedAt = "createdAt"
	SortByViews     = "views"
	SortByDuration  = "duration"
	SortByTitle     = "title"
)

// VideoRecord is a video joined with its owner and the ids of the users who
// liked it.
type VideoRecord struct {
	Video   Video
	Owner   User
	LikedBy []string
}

// ChannelRecord is a user joined with both directions of its subscriptions.
type ChannelRecord struct {
	User          User
	SubscriberIDs []string
	SubscribedTo  []string
}

// CommentRecord is a comment joined with its author and likers.
type CommentRecord struct {
	Comment Comment
	Owner   User
	LikedBy []string
}

// TweetRecord is a tweet joined with its author and likers.
type TweetRecord struct {
	Tweet   Tweet
	Owner   User
	LikedBy []string
}

// LikedVideoRecord pairs a user's like with the liked video and its owner.
type LikedVideoRecord struct {
	LikedAt time.Time
	Video   Video
	Owner   User
}

// WatchRecord is a watch history entry joined with the video and its owner.
type WatchRecord struct {
	WatchedAt time.Time
	Video     Video
	Owner     User
}

// ChannelTotals aggregates a channel's catalogue.
type ChannelTotals struct {
	Videos int64
	Views  int64
	Likes  int64
}
