package repositories

import (
	"context"
	"time"

	"github.com/vidstream/backend/internal/models"
)

// PlaylistRepository defines the data access contract for playlists and
// their membership. AddVideo is idempotent.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id, ownerID string) error
	AddVideo(ctx context.Context, playlistID, videoID string, at time.Time) error
	RemoveVideo(ctx context.Context, playlistID, videoID string, at time.Time) error
}
