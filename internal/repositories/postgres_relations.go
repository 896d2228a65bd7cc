package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/vidstream/backend/internal/db"
	"github.com/vidstream/backend/internal/models"
)

// PostgresRelationRepository persists likes and subscriptions behind a
// single kind-parameterised contract.
type PostgresRelationRepository struct {
	postgres
}

// NewPostgresRelationRepository constructs a relation repository backed by PostgreSQL.
func NewPostgresRelationRepository(pool db.Pool, opts ...Option) *PostgresRelationRepository {
	return &PostgresRelationRepository{postgres: newPostgres(pool, opts)}
}

type relationTable struct {
	name   string
	actor  string
	object string
}

func tableFor(kind models.RelationKind) (relationTable, error) {
	switch kind {
	case models.VideoLike:
		return relationTable{name: "likes", actor: "liked_by", object: "video_id"}, nil
	case models.CommentLike:
		return relationTable{name: "likes", actor: "liked_by", object: "comment_id"}, nil
	case models.TweetLike:
		return relationTable{name: "likes", actor: "liked_by", object: "tweet_id"}, nil
	case models.SubscriptionRelation:
		return relationTable{name: "subscriptions", actor: "subscriber_id", object: "channel_id"}, nil
	}
	return relationTable{}, fmt.Errorf("unknown relation kind %q", kind)
}

// FindRelation returns the id of the relation identified by key.
func (r *PostgresRelationRepository) FindRelation(ctx context.Context, key models.RelationKey) (string, error) {
	table, err := tableFor(key.Kind)
	if err != nil {
		return "", err
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	var id string
	query := fmt.Sprintf(`SELECT id FROM %s WHERE %s = $1 AND %s = $2`, table.name, table.actor, table.object)
	if err := r.pool.QueryRow(ctx, query, key.ActorID, key.ObjectID).Scan(&id); err != nil {
		return "", translateError(err, "select "+string(key.Kind))
	}
	return id, nil
}

// CreateRelation inserts the relation. A duplicate maps to ErrConflict and a
// missing actor or object maps to ErrNotFound.
func (r *PostgresRelationRepository) CreateRelation(ctx context.Context, key models.RelationKey, id string, at time.Time) error {
	table, err := tableFor(key.Kind)
	if err != nil {
		return err
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := fmt.Sprintf(`INSERT INTO %s (id, %s, %s, created_at) VALUES ($1, $2, $3, $4)`, table.name, table.actor, table.object)
	_, err = r.pool.Exec(ctx, query, id, key.ActorID, key.ObjectID, at)
	return translateError(err, "insert "+string(key.Kind))
}

// DeleteRelation removes the relation with the given id. ErrNotFound means it
// was already gone.
func (r *PostgresRelationRepository) DeleteRelation(ctx context.Context, key models.RelationKey, id string) error {
	table, err := tableFor(key.Kind)
	if err != nil {
		return err
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table.name), id)
	if err != nil {
		return translateError(err, "delete "+string(key.Kind))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
