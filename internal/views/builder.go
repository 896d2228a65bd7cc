// Package views assembles the read-side projections served to clients:
// feeds, detail pages, channel pages and dashboards. Every per-viewer flag
// is derived by set membership over records returned from the Store.
package views

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/logging"
	"github.com/vidstream/backend/internal/models"
)

// LikedVideosLimit caps the liked videos recipe.
const LikedVideosLimit = 5

// Store loads the joined records behind every projection. Single-record
// lookups report repositories.ErrNotFound; batch lookups omit missing ids.
type Store interface {
	ListVideos(ctx context.Context, q models.VideoQuery) ([]models.VideoRecord, int, error)
	FindVideoRecord(ctx context.Context, videoID string) (models.VideoRecord, error)
	IncrementViews(ctx context.Context, videoID string) error
	AppendWatchHistory(ctx context.Context, entry models.WatchEntry) error

	FindChannel(ctx context.Context, userID string) (models.ChannelRecord, error)
	FindChannelByUsername(ctx context.Context, username string) (models.ChannelRecord, error)
	FindChannels(ctx context.Context, ids []string) (map[string]models.ChannelRecord, error)
	UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	VideosByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)

	ListComments(ctx context.Context, videoID string, offset, limit int) ([]models.CommentRecord, int, error)
	ListTweets(ctx context.Context, ownerID string, offset, limit int) ([]models.TweetRecord, int, error)
	ListSubscribers(ctx context.Context, channelID string, offset, limit int) ([]models.Subscription, int, error)
	ListSubscriptions(ctx context.Context, subscriberID string, offset, limit int) ([]models.Subscription, int, error)
	LatestVideos(ctx context.Context, ownerIDs []string) (map[string]models.Video, error)
	RecentVideoLikes(ctx context.Context, userID string, limit int) ([]models.LikedVideoRecord, error)

	FindPlaylist(ctx context.Context, id string) (models.Playlist, error)
	ListPlaylists(ctx context.Context, ownerID string, offset, limit int) ([]models.Playlist, int, error)
	ListWatchHistory(ctx context.Context, userID string, offset, limit int) ([]models.WatchRecord, int, error)
	ChannelTotals(ctx context.Context, channelID string) (models.ChannelTotals, error)
}

// Builder produces the read projections.
type Builder struct {
	store Store
	now   func() time.Time
}

// Option customises a Builder.
type Option func(*Builder)

// WithClock overrides the clock used to stamp watch history entries.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder constructs a Builder over store.
func NewBuilder(store Store, opts ...Option) *Builder {
	b := &Builder{store: store, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FeedQuery selects the videos listed by VideoFeed.
type FeedQuery struct {
	OwnerID string
	Query   string
	SortBy  string
	// SortType is "asc" or "desc"; anything else means descending.
	SortType string
	Page     Page
}

// VideoFeed lists published videos, optionally restricted to one owner and
// filtered by a case-insensitive title substring.
func (b *Builder) VideoFeed(ctx context.Context, q FeedQuery, viewerID string) (Paged[FeedVideo], error) {
	if q.OwnerID != "" {
		if err := checkID("userId", q.OwnerID); err != nil {
			return Paged[FeedVideo]{}, err
		}
	}
	page := q.Page.normalised()
	records, total, err := b.store.ListVideos(ctx, models.VideoQuery{
		OwnerID:       q.OwnerID,
		Title:         strings.TrimSpace(q.Query),
		SortBy:        sortColumn(q.SortBy),
		Ascending:     strings.EqualFold(q.SortType, "asc"),
		PublishedOnly: true,
		Offset:        page.Offset(),
		Limit:         page.Limit,
	})
	if err != nil {
		return Paged[FeedVideo]{}, apperror.FromStore(err, "video", "")
	}

	items := make([]FeedVideo, 0, len(records))
	for _, rec := range records {
		v := rec.Video
		items = append(items, FeedVideo{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			Thumbnail:   v.Thumbnail.URL,
			Duration:    v.Duration,
			Views:       v.Views,
			CreatedAt:   v.CreatedAt,
			Owner:       summarize(rec.Owner),
			LikesCount:  len(rec.LikedBy),
			IsLiked:     contains(rec.LikedBy, viewerID),
		})
	}
	return newPaged(items, total, page), nil
}

func sortColumn(s string) string {
	switch s {
	case models.SortByViews, models.SortByDuration, models.SortByTitle:
		return s
	}
	return models.SortByCreatedAt
}

// VideoDetail returns a single video and records the view: the view counter
// is incremented and, for a signed-in viewer, a watch history entry is
// appended. Drafts are visible to their owner only.
func (b *Builder) VideoDetail(ctx context.Context, videoID, viewerID string) (VideoDetail, error) {
	if err := checkID("videoId", videoID); err != nil {
		return VideoDetail{}, err
	}
	rec, err := b.visibleVideo(ctx, videoID, viewerID)
	if err != nil {
		return VideoDetail{}, err
	}
	channel, err := b.store.FindChannel(ctx, rec.Video.OwnerID)
	if err != nil {
		return VideoDetail{}, apperror.FromStore(err, "channel", rec.Video.OwnerID)
	}
	if err := b.store.IncrementViews(ctx, videoID); err != nil {
		return VideoDetail{}, apperror.FromStore(err, "video", videoID)
	}
	if viewerID != "" {
		entry := models.WatchEntry{UserID: viewerID, VideoID: videoID, WatchedAt: b.now()}
		if err := b.store.AppendWatchHistory(ctx, entry); err != nil {
			logging.FromContext(ctx).Warn("append watch history failed",
				slog.String("video_id", videoID), slog.Any("error", err))
		}
	}

	v := rec.Video
	return VideoDetail{
		ID:          v.ID,
		VideoFile:   v.Media.URL,
		Thumbnail:   v.Thumbnail.URL,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		Views:       v.Views + 1,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt,
		Owner: DetailOwner{
			ID:               channel.User.ID,
			Username:         channel.User.Username,
			FullName:         channel.User.FullName,
			Avatar:           channel.User.Avatar.URL,
			SubscribersCount: len(channel.SubscriberIDs),
			IsSubscribed:     contains(channel.SubscriberIDs, viewerID),
		},
		LikesCount: len(rec.LikedBy),
		IsLiked:    contains(rec.LikedBy, viewerID),
	}, nil
}

// visibleVideo loads a video, hiding drafts from everyone but their owner.
func (b *Builder) visibleVideo(ctx context.Context, videoID, viewerID string) (models.VideoRecord, error) {
	rec, err := b.store.FindVideoRecord(ctx, videoID)
	if err != nil {
		return models.VideoRecord{}, apperror.FromStore(err, "video", videoID)
	}
	if !rec.Video.IsPublished && (viewerID == "" || rec.Video.OwnerID != viewerID) {
		return models.VideoRecord{}, apperror.NotFound("video", videoID)
	}
	return rec, nil
}

// VideoComments lists the comments of a visible video, newest first.
func (b *Builder) VideoComments(ctx context.Context, videoID string, page Page, viewerID string) (Paged[CommentView], error) {
	if err := checkID("videoId", videoID); err != nil {
		return Paged[CommentView]{}, err
	}
	if _, err := b.visibleVideo(ctx, videoID, viewerID); err != nil {
		return Paged[CommentView]{}, err
	}
	page = page.normalised()
	records, total, err := b.store.ListComments(ctx, videoID, page.Offset(), page.Limit)
	if err != nil {
		return Paged[CommentView]{}, apperror.FromStore(err, "comment", "")
	}
	items := make([]CommentView, 0, len(records))
	for _, rec := range records {
		items = append(items, CommentView{
			ID:         rec.Comment.ID,
			Content:    rec.Comment.Content,
			CreatedAt:  rec.Comment.CreatedAt,
			UpdatedAt:  rec.Comment.UpdatedAt,
			Commenter:  summarize(rec.Owner),
			LikesCount: len(rec.LikedBy),
			IsLiked:    contains(rec.LikedBy, viewerID),
		})
	}
	return newPaged(items, total, page), nil
}

// UserTweets lists a user's tweets, newest first.
func (b *Builder) UserTweets(ctx context.Context, userID string, page Page, viewerID string) (Paged[TweetView], error) {
	if err := b.requireUser(ctx, userID); err != nil {
		return Paged[TweetView]{}, err
	}
	page = page.normalised()
	records, total, err := b.store.ListTweets(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return Paged[TweetView]{}, apperror.FromStore(err, "tweet", "")
	}
	items := make([]TweetView, 0, len(records))
	for _, rec := range records {
		items = append(items, TweetView{
			ID:         rec.Tweet.ID,
			Content:    rec.Tweet.Content,
			CreatedAt:  rec.Tweet.CreatedAt,
			UpdatedAt:  rec.Tweet.UpdatedAt,
			Owner:      summarize(rec.Owner),
			LikesCount: len(rec.LikedBy),
			IsLiked:    contains(rec.LikedBy, viewerID),
		})
	}
	return newPaged(items, total, page), nil
}

// LikedVideos returns the viewer's most recent video likes.
func (b *Builder) LikedVideos(ctx context.Context, viewerID string) ([]LikedVideoView, error) {
	if viewerID == "" {
		return nil, apperror.Unauthenticated("sign in to continue")
	}
	records, err := b.store.RecentVideoLikes(ctx, viewerID, LikedVideosLimit)
	if err != nil {
		return nil, apperror.FromStore(err, "like", "")
	}
	items := make([]LikedVideoView, 0, len(records))
	for _, rec := range records {
		items = append(items, LikedVideoView{
			VideoSummary: summarizeVideo(rec.Video),
			IsPublished:  rec.Video.IsPublished,
			Owner:        summarize(rec.Owner),
			LikedAt:      rec.LikedAt,
		})
	}
	return items, nil
}

// WatchHistory lists the viewer's watched videos, most recent first. Every
// view is a separate entry.
func (b *Builder) WatchHistory(ctx context.Context, viewerID string, page Page) (Paged[HistoryVideo], error) {
	if viewerID == "" {
		return Paged[HistoryVideo]{}, apperror.Unauthenticated("sign in to continue")
	}
	page = page.normalised()
	records, total, err := b.store.ListWatchHistory(ctx, viewerID, page.Offset(), page.Limit)
	if err != nil {
		return Paged[HistoryVideo]{}, apperror.FromStore(err, "watch history", "")
	}
	items := make([]HistoryVideo, 0, len(records))
	for _, rec := range records {
		items = append(items, HistoryVideo{
			VideoSummary: summarizeVideo(rec.Video),
			Owner:        summarize(rec.Owner),
			WatchedAt:    rec.WatchedAt,
		})
	}
	return newPaged(items, total, page), nil
}

func (b *Builder) requireUser(ctx context.Context, userID string) error {
	if err := checkID("userId", userID); err != nil {
		return err
	}
	users, err := b.store.UsersByIDs(ctx, []string{userID})
	if err != nil {
		return apperror.FromStore(err, "user", userID)
	}
	if _, ok := users[userID]; !ok {
		return apperror.NotFound("user", userID)
	}
	return nil
}

func checkID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.InvalidInput(field, "invalid "+strings.TrimSuffix(field, "Id")+" reference")
	}
	return nil
}

// contains reports set membership; the anonymous viewer is in no set.
func contains(ids []string, id string) bool {
	return id != "" && slices.Contains(ids, id)
}
