package repositories

import (
	"context"

	"github.com/vidstream/backend/internal/models"
)

// VideoRepository defines the data access contract for videos. Update and
// Delete only touch a row whose owner matches, and report ErrNotFound
// otherwise.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id, ownerID string) error
}
