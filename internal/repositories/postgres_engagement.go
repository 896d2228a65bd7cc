package repositories

import (
	"context"

	"github.com/vidstream/backend/internal/db"
	"github.com/vidstream/backend/internal/models"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	postgres
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool, opts ...Option) *PostgresCommentRepository {
	return &PostgresCommentRepository{postgres: newPostgres(pool, opts)}
}

// Create stores a new comment. A missing video or owner maps to ErrNotFound.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
        INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.VideoID, comment.OwnerID, comment.Content, comment.CreatedAt, comment.UpdatedAt)
	return translateError(err, "insert comment")
}

func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var c models.Comment
	err := r.pool.QueryRow(ctx, `
        SELECT id, video_id, owner_id, content, created_at, updated_at FROM comments WHERE id = $1
    `, id).Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Comment{}, translateError(err, "select comment")
	}
	return c, nil
}

func (r *PostgresCommentRepository) Update(ctx context.Context, comment models.Comment) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
        UPDATE comments SET content = $3, updated_at = $4 WHERE id = $1 AND owner_id = $2
    `, comment.ID, comment.OwnerID, comment.Content, comment.UpdatedAt)
	if err != nil {
		return translateError(err, "update comment")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCommentRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return translateError(err, "delete comment")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	postgres
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool, opts ...Option) *PostgresTweetRepository {
	return &PostgresTweetRepository{postgres: newPostgres(pool, opts)}
}

func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	return translateError(err, "insert tweet")
}

func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var t models.Tweet
	err := r.pool.QueryRow(ctx, `
        SELECT id, owner_id, content, created_at, updated_at FROM tweets WHERE id = $1
    `, id).Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Tweet{}, translateError(err, "select tweet")
	}
	return t, nil
}

func (r *PostgresTweetRepository) Update(ctx context.Context, tweet models.Tweet) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
        UPDATE tweets SET content = $3, updated_at = $4 WHERE id = $1 AND owner_id = $2
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.UpdatedAt)
	if err != nil {
		return translateError(err, "update tweet")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTweetRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM tweets WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return translateError(err, "delete tweet")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ CommentRepository = (*PostgresCommentRepository)(nil)
var _ TweetRepository = (*PostgresTweetRepository)(nil)
