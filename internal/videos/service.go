// Package videos manages the lifecycle of uploaded videos.
package videos

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/logging"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/ownership"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/sanitize"
	"github.com/vidstream/backend/internal/storage"
)

// Service publishes and maintains videos.
type Service struct {
	videos repositories.VideoRepository
	media  storage.MediaStore
	clean  *sanitize.Text
	now    func() time.Time
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

// NewService constructs a video service.
func NewService(videos repositories.VideoRepository, media storage.MediaStore, opts ...Option) *Service {
	s := &Service{
		videos: videos,
		media:  media,
		clean:  sanitize.New(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft is the publish form.
type Draft struct {
	Title       string
	Description string
	// Duration in seconds as reported by the client; used when the store
	// cannot determine it.
	Duration  float64
	VideoFile *storage.Upload
	Thumbnail *storage.Upload
}

// Publish uploads the video and its thumbnail and creates a published
// video. Files already uploaded are removed when a later step fails.
func (s *Service) Publish(ctx context.Context, ownerID string, in Draft) (_ models.Video, err error) {
	ctx, span := logging.StartSpan(ctx, "videos.publish")
	defer func() {
		span.Fail(err)
		span.End()
	}()

	if ownerID == "" {
		return models.Video{}, apperror.Unauthenticated("sign in to continue")
	}
	title := s.clean.Clean(in.Title)
	description := s.clean.Clean(in.Description)
	if title == "" {
		return models.Video{}, apperror.InvalidInput("title", "title is required")
	}
	if description == "" {
		return models.Video{}, apperror.InvalidInput("description", "description is required")
	}
	if in.VideoFile == nil || in.VideoFile.Content == nil {
		return models.Video{}, apperror.InvalidInput("videoFile", "video file is required")
	}
	if in.Thumbnail == nil || in.Thumbnail.Content == nil {
		return models.Video{}, apperror.InvalidInput("thumbnail", "thumbnail is required")
	}

	media, err := s.media.Store(ctx, in.VideoFile.Filename, in.VideoFile.ContentType, in.VideoFile.Content)
	if err != nil {
		return models.Video{}, apperror.UploadFailed("video file", err)
	}
	thumbnail, err := s.media.Store(ctx, in.Thumbnail.Filename, in.Thumbnail.ContentType, in.Thumbnail.Content)
	if err != nil {
		storage.RemoveQuietly(ctx, s.media, media, "videoFile")
		return models.Video{}, apperror.UploadFailed("thumbnail", err)
	}

	duration := media.Duration
	if duration <= 0 {
		duration = max(in.Duration, 0)
	}
	now := s.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Media:       media,
		Thumbnail:   thumbnail,
		Duration:    duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		storage.RemoveQuietly(ctx, s.media, media, "videoFile")
		storage.RemoveQuietly(ctx, s.media, thumbnail, "thumbnail")
		return models.Video{}, apperror.FromStore(err, "user", ownerID)
	}
	logging.FromContext(ctx).Info("video published", "videoId", video.ID)
	return video, nil
}

// Changes carries an update. Empty text fields keep the current value.
type Changes struct {
	Title       string
	Description string
	Thumbnail   *storage.Upload
}

// Update edits a video owned by callerID. A replaced thumbnail is removed
// from the store afterwards on a best-effort basis.
func (s *Service) Update(ctx context.Context, callerID, videoID string, in Changes) (models.Video, error) {
	title := s.clean.Clean(in.Title)
	description := s.clean.Clean(in.Description)
	hasThumbnail := in.Thumbnail != nil && in.Thumbnail.Content != nil
	if title == "" && description == "" && !hasThumbnail {
		return models.Video{}, apperror.InvalidInput("title", "title, description or thumbnail is required")
	}

	var updated models.Video
	previous, err := ownership.Guarded(ctx, callerID, videoID, s.find, func(ctx context.Context, v models.Video) error {
		if title != "" {
			v.Title = title
		}
		if description != "" {
			v.Description = description
		}
		if hasThumbnail {
			asset, err := s.media.Store(ctx, in.Thumbnail.Filename, in.Thumbnail.ContentType, in.Thumbnail.Content)
			if err != nil {
				return apperror.UploadFailed("thumbnail", err)
			}
			v.Thumbnail = asset
		}
		v.UpdatedAt = s.now()
		if err := s.videos.Update(ctx, v); err != nil {
			if hasThumbnail {
				storage.RemoveQuietly(ctx, s.media, v.Thumbnail, "thumbnail")
			}
			return err
		}
		updated = v
		return nil
	})
	if err != nil {
		return models.Video{}, err
	}
	if hasThumbnail {
		storage.RemoveQuietly(ctx, s.media, previous.Thumbnail, "thumbnail")
	}
	return updated, nil
}

// Delete removes a video owned by callerID together with its files.
// Relations pointing at the video are removed by the store.
func (s *Service) Delete(ctx context.Context, callerID, videoID string) error {
	video, err := ownership.Guarded(ctx, callerID, videoID, s.find, func(ctx context.Context, v models.Video) error {
		return s.videos.Delete(ctx, v.ID, callerID)
	})
	if err != nil {
		return err
	}
	storage.RemoveQuietly(ctx, s.media, video.Media, "videoFile")
	storage.RemoveQuietly(ctx, s.media, video.Thumbnail, "thumbnail")
	return nil
}

// TogglePublish flips the published flag of a video owned by callerID.
func (s *Service) TogglePublish(ctx context.Context, callerID, videoID string) (models.Video, error) {
	var updated models.Video
	_, err := ownership.Guarded(ctx, callerID, videoID, s.find, func(ctx context.Context, v models.Video) error {
		v.IsPublished = !v.IsPublished
		v.UpdatedAt = s.now()
		if err := s.videos.Update(ctx, v); err != nil {
			return err
		}
		updated = v
		return nil
	})
	return updated, err
}

func (s *Service) find(ctx context.Context, id string) (models.Video, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Video{}, apperror.InvalidInput("videoId", "invalid video reference")
	}
	return s.videos.FindByID(ctx, id)
}
