package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/vidstream/backend/internal/db"
	"github.com/vidstream/backend/internal/models"
)

// DefaultTimeout bounds every statement issued by the Postgres repositories.
const DefaultTimeout = 5 * time.Second

// Option customises a Postgres repository.
type Option func(*postgres)

// WithTimeout overrides DefaultTimeout. Non-positive values disable the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(p *postgres) {
		p.timeout = timeout
	}
}

type postgres struct {
	pool    db.Pool
	timeout time.Duration
}

func newPostgres(pool db.Pool, opts []Option) postgres {
	p := postgres{pool: pool, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// bound derives the per-statement context. The cancel func must run after
// the row or rows have been fully consumed.
func (p postgres) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

const publicUserColumns = "id, username, email, full_name, avatar_url, avatar_storage_id, cover_url, cover_storage_id, created_at, updated_at"

const videoColumns = "id, owner_id, title, description, media_url, media_storage_id, thumbnail_url, thumbnail_storage_id, duration_seconds, views, is_published, created_at, updated_at"

// prefixed qualifies every column in a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}

func userDest(u *models.User) []any {
	return []any{
		&u.ID, &u.Username, &u.Email, &u.FullName,
		&u.Avatar.URL, &u.Avatar.StorageID, &u.CoverImage.URL, &u.CoverImage.StorageID,
		&u.CreatedAt, &u.UpdatedAt,
	}
}

func videoDest(v *models.Video) []any {
	return []any{
		&v.ID, &v.OwnerID, &v.Title, &v.Description,
		&v.Media.URL, &v.Media.StorageID, &v.Thumbnail.URL, &v.Thumbnail.StorageID,
		&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
	}
}

func concat(groups ...[]any) []any {
	var out []any
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// escapeLike neutralises LIKE metacharacters in user supplied text.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
