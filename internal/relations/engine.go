// Package relations implements idempotent toggling of likes and
// subscriptions.
package relations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/logging"
	"github.com/vidstream/backend/internal/metrics"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
)

// Store persists relations. FindRelation and DeleteRelation report
// repositories.ErrNotFound for an absent relation; CreateRelation reports
// repositories.ErrConflict for a duplicate and repositories.ErrNotFound when
// the actor or the object does not exist.
type Store interface {
	FindRelation(ctx context.Context, key models.RelationKey) (string, error)
	CreateRelation(ctx context.Context, key models.RelationKey, id string, at time.Time) error
	DeleteRelation(ctx context.Context, key models.RelationKey, id string) error
}

// State is the outcome of a toggle.
type State struct {
	Kind   models.RelationKind
	Active bool
}

// Engine toggles relations of every kind.
type Engine struct {
	store   Store
	metrics metrics.Recorder
	now     func() time.Time
}

// NewEngine constructs an Engine. recorder may be nil.
func NewEngine(store Store, recorder metrics.Recorder) *Engine {
	return &Engine{
		store:   store,
		metrics: metrics.OrDiscard(recorder),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Toggle flips the relation between actorID and objectID: it is removed if
// present and created otherwise. Losing a race to a concurrent toggle still
// reports the state the caller asked for.
func (e *Engine) Toggle(ctx context.Context, kind models.RelationKind, actorID, objectID string) (State, error) {
	if !kind.Valid() {
		return State{}, apperror.InvalidInput("kind", "unknown relation kind")
	}
	if actorID == "" {
		return State{}, apperror.Unauthenticated("sign in to continue")
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return State{}, apperror.InvalidInput("userId", "invalid user reference")
	}
	if _, err := uuid.Parse(objectID); err != nil {
		return State{}, apperror.InvalidInput(kind.Target()+"Id", "invalid "+kind.Target()+" reference")
	}

	key := models.RelationKey{Kind: kind, ActorID: actorID, ObjectID: objectID}
	logger := logging.FromContext(ctx).With(slog.String("relation", string(kind)), slog.String("object_id", objectID))

	id, err := e.store.FindRelation(ctx, key)
	switch {
	case err == nil:
		if err := e.store.DeleteRelation(ctx, key, id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return State{}, apperror.FromStore(err, kind.Target(), objectID)
		}
		return e.done(logger, kind, false), nil
	case !errors.Is(err, repositories.ErrNotFound):
		return State{}, apperror.FromStore(err, kind.Target(), objectID)
	}

	err = e.store.CreateRelation(ctx, key, uuid.NewString(), e.now())
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrConflict):
		logger.Debug("relation created concurrently")
	case errors.Is(err, repositories.ErrNotFound):
		return State{}, apperror.NotFound(kind.Target(), objectID)
	default:
		return State{}, apperror.FromStore(err, kind.Target(), objectID)
	}
	return e.done(logger, kind, true), nil
}

func (e *Engine) done(logger *slog.Logger, kind models.RelationKind, active bool) State {
	e.metrics.RecordToggle(string(kind), active)
	logger.Debug("relation toggled", slog.Bool("active", active))
	return State{Kind: kind, Active: active}
}
