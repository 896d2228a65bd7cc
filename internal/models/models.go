package models

import "time"

// MediaAsset references a file held by the object store.
type MediaAsset struct {
	URL       string  `json:"url"`
	StorageID string  `json:"-"`
	Duration  float64 `json:"-"`
}

// User represents an account within the vidstream platform. Every user is
// also a channel.
type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FullName   string     `json:"fullName"`
	Password   string     `json:"-"`
	Avatar     MediaAsset `json:"avatar"`
	CoverImage MediaAsset `json:"coverImage"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Video is a published (or draft) media item owned by a channel.
type Video struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Media       MediaAsset `json:"videoFile"`
	Thumbnail   MediaAsset `json:"thumbnail"`
	Duration    float64    `json:"duration"`
	Views       int64      `json:"views"`
	IsPublished bool       `json:"isPublished"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (v Video) Owner() string        { return v.OwnerID }
func (v Video) ResourceName() string { return "video" }

// Comment is a text reply attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Comment) Owner() string        { return c.OwnerID }
func (c Comment) ResourceName() string { return "comment" }

// Tweet is a short text update posted on a channel.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Tweet) Owner() string        { return t.OwnerID }
func (t Tweet) ResourceName() string { return "tweet" }

// Playlist is an ordered set of videos curated by its owner.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Playlist) Owner() string        { return p.OwnerID }
func (p Playlist) ResourceName() string { return "playlist" }

// RelationKind names one of the toggleable user relations.
type RelationKind string

const (
	VideoLike            RelationKind = "video_like"
	CommentLike          RelationKind = "comment_like"
	TweetLike            RelationKind = "tweet_like"
	SubscriptionRelation RelationKind = "subscription"
)

// Valid reports whether k is one of the known relation kinds.
func (k RelationKind) Valid() bool {
	switch k {
	case VideoLike, CommentLike, TweetLike, SubscriptionRelation:
		return true
	}
	return false
}

// Target returns the name of the entity a relation of this kind points at.
func (k RelationKind) Target() string {
	switch k {
	case VideoLike:
		return "video"
	case CommentLike:
		return "comment"
	case TweetLike:
		return "tweet"
	case SubscriptionRelation:
		return "channel"
	}
	return "resource"
}

// RelationKey identifies a relation between an acting user and an object.
// For likes the object is the liked video, comment or tweet; for
// subscriptions the actor is the subscriber and the object is the channel.
type RelationKey struct {
	Kind     RelationKind
	ActorID  string
	ObjectID string
}

// Like records that a user liked exactly one video, comment or tweet.
type Like struct {
	ID        string
	LikedBy   string
	Kind      RelationKind
	TargetID  string
	CreatedAt time.Time
}

// Subscription records that a subscriber follows a channel.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// WatchEntry is one append-only record of a user opening a video.
type WatchEntry struct {
	UserID    string
	VideoID   string
	WatchedAt time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
