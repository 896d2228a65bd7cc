// Package engagement implements comments, tweets, likes and subscriptions.
package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/ownership"
	"github.com/vidstream/backend/internal/relations"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/sanitize"
)

// VideoLookup resolves the video a comment is attached to.
type VideoLookup interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
}

// Toggler flips relations.
type Toggler interface {
	Toggle(ctx context.Context, kind models.RelationKind, actorID, objectID string) (relations.State, error)
}

// Service handles user engagement.
type Service struct {
	comments  repositories.CommentRepository
	tweets    repositories.TweetRepository
	videos    VideoLookup
	relations Toggler
	clean     *sanitize.Text
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs an engagement service.
func NewService(comments repositories.CommentRepository, tweets repositories.TweetRepository, videos VideoLookup, toggler Toggler, opts ...Option) *Service {
	s := &Service{
		comments:  comments,
		tweets:    tweets,
		videos:    videos,
		relations: toggler,
		clean:     sanitize.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) content(raw string) (string, error) {
	content := s.clean.Clean(raw)
	if content == "" {
		return "", apperror.InvalidInput("content", "content is required")
	}
	return content, nil
}

func signedIn(callerID string) error {
	if callerID == "" {
		return apperror.Unauthenticated("sign in to continue")
	}
	return nil
}

func reference(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.InvalidInput(field, "invalid reference")
	}
	return nil
}

// AddComment attaches a comment to a video the caller can see.
func (s *Service) AddComment(ctx context.Context, callerID, videoID, content string) (models.Comment, error) {
	if err := signedIn(callerID); err != nil {
		return models.Comment{}, err
	}
	if err := reference("videoId", videoID); err != nil {
		return models.Comment{}, err
	}
	text, err := s.content(content)
	if err != nil {
		return models.Comment{}, err
	}
	if err := s.visible(ctx, callerID, videoID); err != nil {
		return models.Comment{}, err
	}

	now := s.now()
	comment := models.Comment{ID: uuid.NewString(), VideoID: videoID, OwnerID: callerID, Content: text, CreatedAt: now, UpdatedAt: now}
	if err := s.comments.Create(ctx, comment); err != nil {
		return models.Comment{}, apperror.FromStore(err, "video", videoID)
	}
	return comment, nil
}

// UpdateComment replaces the content of the caller's comment.
func (s *Service) UpdateComment(ctx context.Context, callerID, commentID, content string) (models.Comment, error) {
	text, err := s.content(content)
	if err != nil {
		return models.Comment{}, err
	}
	var updated models.Comment
	_, err = ownership.Guarded(ctx, callerID, commentID, s.findComment, func(ctx context.Context, c models.Comment) error {
		c.Content = text
		c.UpdatedAt = s.now()
		if err := s.comments.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	return updated, err
}

// DeleteComment removes the caller's comment and its likes.
func (s *Service) DeleteComment(ctx context.Context, callerID, commentID string) error {
	_, err := ownership.Guarded(ctx, callerID, commentID, s.findComment, func(ctx context.Context, c models.Comment) error {
		return s.comments.Delete(ctx, c.ID, callerID)
	})
	return err
}

func (s *Service) findComment(ctx context.Context, id string) (models.Comment, error) {
	if err := reference("commentId", id); err != nil {
		return models.Comment{}, err
	}
	return s.comments.FindByID(ctx, id)
}

// CreateTweet posts a tweet on the caller's channel.
func (s *Service) CreateTweet(ctx context.Context, callerID, content string) (models.Tweet, error) {
	if err := signedIn(callerID); err != nil {
		return models.Tweet{}, err
	}
	text, err := s.content(content)
	if err != nil {
		return models.Tweet{}, err
	}
	now := s.now()
	tweet := models.Tweet{ID: uuid.NewString(), OwnerID: callerID, Content: text, CreatedAt: now, UpdatedAt: now}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		return models.Tweet{}, apperror.FromStore(err, "user", callerID)
	}
	return tweet, nil
}

// UpdateTweet replaces the content of the caller's tweet.
func (s *Service) UpdateTweet(ctx context.Context, callerID, tweetID, content string) (models.Tweet, error) {
	text, err := s.content(content)
	if err != nil {
		return models.Tweet{}, err
	}
	var updated models.Tweet
	_, err = ownership.Guarded(ctx, callerID, tweetID, s.findTweet, func(ctx context.Context, t models.Tweet) error {
		t.Content = text
		t.UpdatedAt = s.now()
		if err := s.tweets.Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	return updated, err
}

// DeleteTweet removes the caller's tweet and its likes.
func (s *Service) DeleteTweet(ctx context.Context, callerID, tweetID string) error {
	_, err := ownership.Guarded(ctx, callerID, tweetID, s.findTweet, func(ctx context.Context, t models.Tweet) error {
		return s.tweets.Delete(ctx, t.ID, callerID)
	})
	return err
}

func (s *Service) findTweet(ctx context.Context, id string) (models.Tweet, error) {
	if err := reference("tweetId", id); err != nil {
		return models.Tweet{}, err
	}
	return s.tweets.FindByID(ctx, id)
}

// visible reports NotFound for a missing video and for someone else's draft.
func (s *Service) visible(ctx context.Context, callerID, videoID string) error {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return apperror.FromStore(err, "video", videoID)
	}
	if !video.IsPublished && video.OwnerID != callerID {
		return apperror.NotFound("video", videoID)
	}
	return nil
}

// ToggleVideoLike likes or unlikes a video the caller can see.
func (s *Service) ToggleVideoLike(ctx context.Context, callerID, videoID string) (relations.State, error) {
	if err := signedIn(callerID); err != nil {
		return relations.State{}, err
	}
	if err := reference("videoId", videoID); err != nil {
		return relations.State{}, err
	}
	if err := s.visible(ctx, callerID, videoID); err != nil {
		return relations.State{}, err
	}
	return s.relations.Toggle(ctx, models.VideoLike, callerID, videoID)
}

// ToggleCommentLike likes or unlikes a comment.
func (s *Service) ToggleCommentLike(ctx context.Context, callerID, commentID string) (relations.State, error) {
	return s.relations.Toggle(ctx, models.CommentLike, callerID, commentID)
}

// ToggleTweetLike likes or unlikes a tweet.
func (s *Service) ToggleTweetLike(ctx context.Context, callerID, tweetID string) (relations.State, error) {
	return s.relations.Toggle(ctx, models.TweetLike, callerID, tweetID)
}

// ToggleSubscription subscribes the caller to a channel or cancels the
// subscription. Subscribing to one's own channel is allowed.
func (s *Service) ToggleSubscription(ctx context.Context, callerID, channelID string) (relations.State, error) {
	return s.relations.Toggle(ctx, models.SubscriptionRelation, callerID, channelID)
}
