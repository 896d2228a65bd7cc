package repositories

import (
	"context"
	"time"

	"github.com/vidstream/backend/internal/db"
	"github.com/vidstream/backend/internal/models"
)

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for
// playlists. Membership lives in playlist_videos, ordered by added_at.
type PostgresPlaylistRepository struct {
	postgres
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool, opts ...Option) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{postgres: newPostgres(pool, opts)}
}

const playlistSelect = `
    SELECT p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
           COALESCE((SELECT array_agg(pv.video_id::TEXT ORDER BY pv.added_at, pv.video_id)
                     FROM playlist_videos pv WHERE pv.playlist_id = p.id), ARRAY[]::TEXT[])
    FROM playlists p`

func playlistDest(p *models.Playlist) []any {
	return []any{&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt, &p.VideoIDs}
}

func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, playlist.CreatedAt, playlist.UpdatedAt)
	return translateError(err, "insert playlist")
}

// FindByID fetches a playlist together with its ordered member ids.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var p models.Playlist
	if err := r.pool.QueryRow(ctx, playlistSelect+` WHERE p.id = $1`, id).Scan(playlistDest(&p)...); err != nil {
		return models.Playlist{}, translateError(err, "select playlist")
	}
	return p, nil
}

func (r *PostgresPlaylistRepository) Update(ctx context.Context, playlist models.Playlist) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
        UPDATE playlists SET name = $3, description = $4, updated_at = $5
        WHERE id = $1 AND owner_id = $2
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, playlist.UpdatedAt)
	if err != nil {
		return translateError(err, "update playlist")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM playlists WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return translateError(err, "delete playlist")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo inserts the membership row if it is not already present.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string, at time.Time) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, added_at) VALUES ($1, $2, $3)
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, playlistID, videoID, at)
	if err != nil {
		return translateError(err, "insert playlist video")
	}
	return r.touch(ctx, playlistID, at)
}

// RemoveVideo deletes the membership row; removing an absent video is a no-op.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string, at time.Time) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `
        DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID); err != nil {
		return translateError(err, "delete playlist video")
	}
	return r.touch(ctx, playlistID, at)
}

func (r *PostgresPlaylistRepository) touch(ctx context.Context, playlistID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE playlists SET updated_at = $2 WHERE id = $1`, playlistID, at)
	return translateError(err, "touch playlist")
}

var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
