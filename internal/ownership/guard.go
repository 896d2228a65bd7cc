package ownership

import (
	"context"
	"errors"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/repositories"
)

// Finder loads a resource by id.
type Finder[T Owned] func(ctx context.Context, id string) (T, error)

// Guarded loads the resource id, asserts callerID owns it and runs mutate
// with it. mutate is expected to issue an owner-predicated statement; when it
// reports repositories.ErrNotFound the resource is loaded again so that a
// resource that changed hands yields Forbidden and a vanished one NotFound.
func Guarded[T Owned](ctx context.Context, callerID, id string, find Finder[T], mutate func(context.Context, T) error) (T, error) {
	var zero T
	resource, err := find(ctx, id)
	if err != nil {
		return zero, apperror.FromStore(err, zero.ResourceName(), id)
	}
	if err := AssertOwner(resource, callerID); err != nil {
		return zero, err
	}

	err = mutate(ctx, resource)
	if err == nil {
		return resource, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return zero, apperror.FromStore(err, zero.ResourceName(), id)
	}

	current, findErr := find(ctx, id)
	if findErr != nil {
		return zero, apperror.FromStore(findErr, zero.ResourceName(), id)
	}
	if err := AssertOwner(current, callerID); err != nil {
		return zero, err
	}
	return zero, apperror.NotFound(zero.ResourceName(), id)
}
