package repositories

import (
	"context"

	"github.com/vidstream/backend/internal/db"
	"github.com/vidstream/backend/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	postgres
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool, opts ...Option) *PostgresVideoRepository {
	return &PostgresVideoRepository{postgres: newPostgres(pool, opts)}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
        INSERT INTO videos (`+videoColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.Title, video.Description,
		video.Media.URL, video.Media.StorageID, video.Thumbnail.URL, video.Thumbnail.StorageID,
		video.Duration, video.Views, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	return translateError(err, "insert video")
}

// FindByID fetches a single video regardless of its publication state.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var video models.Video
	err := r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id).Scan(videoDest(&video)...)
	if err != nil {
		return models.Video{}, translateError(err, "select video")
	}
	return video, nil
}

// Update rewrites the editable fields of a video owned by video.OwnerID.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
        UPDATE videos
        SET title = $3, description = $4, thumbnail_url = $5, thumbnail_storage_id = $6,
            is_published = $7, updated_at = $8
        WHERE id = $1 AND owner_id = $2
    `, video.ID, video.OwnerID, video.Title, video.Description,
		video.Thumbnail.URL, video.Thumbnail.StorageID, video.IsPublished, video.UpdatedAt)
	if err != nil {
		return translateError(err, "update video")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a video owned by ownerID. Likes, comments, history and
// playlist entries referencing it cascade.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return translateError(err, "delete video")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews adds exactly one view to the video.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "increment video views")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
