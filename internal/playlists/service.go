// Package playlists manages user curated playlists.
package playlists

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/ownership"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/sanitize"
)

// VideoLookup resolves videos added to playlists.
type VideoLookup interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
}

// Service manages playlists. Only the owner may change a playlist.
type Service struct {
	playlists repositories.PlaylistRepository
	videos    VideoLookup
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

// NewService constructs a playlist service.
func NewService(playlists repositories.PlaylistRepository, videos VideoLookup, opts ...Option) *Service {
	s := &Service{
		playlists: playlists,
		videos:    videos,
		clean:     sanitize.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create makes an empty playlist owned by callerID.
func (s *Service) Create(ctx context.Context, callerID, name, description string) (models.Playlist, error) {
	if callerID == "" {
		return models.Playlist{}, apperror.Unauthenticated("sign in to continue")
	}
	name = s.clean.Clean(name)
	if name == "" {
		return models.Playlist{}, apperror.InvalidInput("name", "name is required")
	}
	now := s.now()
	p := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     callerID,
		Name:        name,
		Description: s.clean.Clean(description),
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.playlists.Create(ctx, p); err != nil {
		return models.Playlist{}, apperror.FromStore(err, "user", callerID)
	}
	return p, nil
}

// Update renames or redescribes a playlist. Empty fields keep their value.
func (s *Service) Update(ctx context.Context, callerID, playlistID, name, description string) (models.Playlist, error) {
	name = s.clean.Clean(name)
	description = s.clean.Clean(description)
	if name == "" && description == "" {
		return models.Playlist{}, apperror.InvalidInput("name", "name or description is required")
	}
	var updated models.Playlist
	_, err := ownership.Guarded(ctx, callerID, playlistID, s.find, func(ctx context.Context, p models.Playlist) error {
		if name != "" {
			p.Name = name
		}
		if description != "" {
			p.Description = description
		}
		p.UpdatedAt = s.now()
		if err := s.playlists.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	return updated, err
}

// Delete removes a playlist. Member videos are untouched.
func (s *Service) Delete(ctx context.Context, callerID, playlistID string) error {
	_, err := ownership.Guarded(ctx, callerID, playlistID, s.find, func(ctx context.Context, p models.Playlist) error {
		return s.playlists.Delete(ctx, p.ID, callerID)
	})
	return err
}

// AddVideo adds a video to the playlist. Adding a member again is a no-op.
func (s *Service) AddVideo(ctx context.Context, callerID, playlistID, videoID string) (models.Playlist, error) {
	if _, err := uuid.Parse(videoID); err != nil {
		return models.Playlist{}, apperror.InvalidInput("videoId", "invalid video reference")
	}
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Playlist{}, apperror.FromStore(err, "video", videoID)
	}
	if !video.IsPublished && video.OwnerID != callerID {
		return models.Playlist{}, apperror.NotFound("video", videoID)
	}
	if _, err := ownership.Guarded(ctx, callerID, playlistID, s.find, func(ctx context.Context, p models.Playlist) error {
		return s.playlists.AddVideo(ctx, p.ID, videoID, s.now())
	}); err != nil {
		return models.Playlist{}, err
	}
	return s.reload(ctx, playlistID)
}

// RemoveVideo removes a video from the playlist if present.
func (s *Service) RemoveVideo(ctx context.Context, callerID, playlistID, videoID string) (models.Playlist, error) {
	if _, err := uuid.Parse(videoID); err != nil {
		return models.Playlist{}, apperror.InvalidInput("videoId", "invalid video reference")
	}
	if _, err := ownership.Guarded(ctx, callerID, playlistID, s.find, func(ctx context.Context, p models.Playlist) error {
		return s.playlists.RemoveVideo(ctx, p.ID, videoID, s.now())
	}); err != nil {
		return models.Playlist{}, err
	}
	return s.reload(ctx, playlistID)
}

func (s *Service) reload(ctx context.Context, playlistID string) (models.Playlist, error) {
	p, err := s.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, apperror.FromStore(err, "playlist", playlistID)
	}
	return p, nil
}

func (s *Service) find(ctx context.Context, id string) (models.Playlist, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Playlist{}, apperror.InvalidInput("playlistId", "invalid playlist reference")
	}
	return s.playlists.FindByID(ctx, id)
}
