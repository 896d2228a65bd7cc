package repositories

import (
	"context"

	"github.com/vidstream/backend/internal/db"
	"github.com/vidstream/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users,
// their stored refresh credential and their watch history.
type PostgresUserRepository struct {
	postgres
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool, opts ...Option) *PostgresUserRepository {
	return &PostgresUserRepository{postgres: newPostgres(pool, opts)}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, avatar_storage_id,
                           cover_url, cover_storage_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, user.ID, user.Username, user.Email, user.FullName, user.Password,
		user.Avatar.URL, user.Avatar.StorageID, user.CoverImage.URL, user.CoverImage.StorageID,
		user.CreatedAt, user.UpdatedAt)
	return translateError(err, "insert user")
}

// FindByID fetches a user by id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindByUsername fetches a user by their (lower-cased) username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, "username", username)
}

// FindByEmail fetches a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, column, value string) (models.User, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+publicUserColumns+`, password_hash FROM users WHERE `+column+` = $1`, value)

	var user models.User
	if err := row.Scan(append(userDest(&user), &user.Password)...); err != nil {
		return models.User{}, translateError(err, "select user by "+column)
	}
	return user, nil
}

// Update modifies the mutable profile fields of an existing user.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
        UPDATE users
        SET email = $2, full_name = $3, password_hash = $4,
            avatar_url = $5, avatar_storage_id = $6, cover_url = $7, cover_storage_id = $8,
            updated_at = $9
        WHERE id = $1
    `, user.ID, user.Email, user.FullName, user.Password,
		user.Avatar.URL, user.Avatar.StorageID, user.CoverImage.URL, user.CoverImage.StorageID,
		user.UpdatedAt)
	if err != nil {
		return translateError(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// StoreRefreshToken overwrites the user's stored refresh credential.
func (r *PostgresUserRepository) StoreRefreshToken(ctx context.Context, userID, token string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE users SET refresh_token = $2 WHERE id = $1`, userID, token)
	if err != nil {
		return translateError(err, "store refresh token")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadRefreshToken returns the stored refresh credential, or "" when none is set.
func (r *PostgresUserRepository) LoadRefreshToken(ctx context.Context, userID string) (string, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var token *string
	err := r.pool.QueryRow(ctx, `SELECT refresh_token FROM users WHERE id = $1`, userID).Scan(&token)
	if err != nil {
		return "", translateError(err, "load refresh token")
	}
	if token == nil {
		return "", nil
	}
	return *token, nil
}

// SwapRefreshToken replaces current with next only if current is still the
// stored value. It reports whether the swap happened.
func (r *PostgresUserRepository) SwapRefreshToken(ctx context.Context, userID, current, next string) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
        UPDATE users SET refresh_token = $3
        WHERE id = $1 AND refresh_token = $2
    `, userID, current, next)
	if err != nil {
		return false, translateError(err, "swap refresh token")
	}
	return tag.RowsAffected() == 1, nil
}

// ClearRefreshToken removes the stored refresh credential.
func (r *PostgresUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE users SET refresh_token = NULL WHERE id = $1`, userID)
	if err != nil {
		return translateError(err, "clear refresh token")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendWatchHistory records that the user opened a video. Entries are never
// de-duplicated.
func (r *PostgresUserRepository) AppendWatchHistory(ctx context.Context, entry models.WatchEntry) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at) VALUES ($1, $2, $3)
    `, entry.UserID, entry.VideoID, entry.WatchedAt)
	return translateError(err, "append watch history")
}

var _ UserRepository = (*PostgresUserRepository)(nil)
