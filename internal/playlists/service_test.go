package playlists

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/repositories/memory"
)

type harness struct {
	service *Service
	store   *memory.Store
	owner   string
	other   string
	videos  []string
	draft   string
	clock   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	h := &harness{store: memory.NewStore(), owner: uuid.NewString(), other: uuid.NewString(), draft: uuid.NewString(), clock: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}
	for name, id := range map[string]string{"owner": h.owner, "other": h.other} {
		require.NoError(t, h.store.Users().Create(ctx, models.User{ID: id, Username: name, Email: name + "@example.com"}))
	}
	for range 3 {
		id := uuid.NewString()
		require.NoError(t, h.store.Videos().Create(ctx, models.Video{ID: id, OwnerID: h.other, Title: "clip", IsPublished: true}))
		h.videos = append(h.videos, id)
	}
	require.NoError(t, h.store.Videos().Create(ctx, models.Video{ID: h.draft, OwnerID: h.other, Title: "draft"}))
	h.service = NewService(h.store.Playlists(), h.store.Videos(), WithClock(func() time.Time {
		h.clock = h.clock.Add(time.Second)
		return h.clock
	}))
	return h
}

func TestPlaylistMembership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p, err := h.service.Create(ctx, h.owner, "Favourites", "")
	require.NoError(t, err)
	assert.Empty(t, p.VideoIDs)

	for _, id := range []string{h.videos[1], h.videos[0], h.videos[1]} {
		p, err = h.service.AddVideo(ctx, h.owner, p.ID, id)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{h.videos[1], h.videos[0]}, p.VideoIDs, "set semantics in insertion order")

	p, err = h.service.RemoveVideo(ctx, h.owner, p.ID, h.videos[1])
	require.NoError(t, err)
	assert.Equal(t, []string{h.videos[0]}, p.VideoIDs)

	p, err = h.service.RemoveVideo(ctx, h.owner, p.ID, h.videos[2])
	require.NoError(t, err, "removing a non-member is a no-op")
	assert.Len(t, p.VideoIDs, 1)
}

func TestPlaylistOwnerOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p, err := h.service.Create(ctx, h.owner, "Mine", "desc")
	require.NoError(t, err)

	_, err = h.service.AddVideo(ctx, h.other, p.ID, h.videos[0])
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = h.service.RemoveVideo(ctx, h.other, p.ID, h.videos[0])
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = h.service.Update(ctx, h.other, p.ID, "Theirs", "")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, h.service.Delete(ctx, h.other, p.ID), apperror.ErrForbidden)

	renamed, err := h.service.Update(ctx, h.owner, p.ID, "Renamed", "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Name)
	assert.Equal(t, "desc", renamed.Description)

	require.NoError(t, h.service.Delete(ctx, h.owner, p.ID))
	_, err = h.store.Playlists().FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = h.store.Videos().FindByID(ctx, h.videos[0])
	assert.NoError(t, err, "videos survive playlist deletion")
}

func TestAddVideoValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p, err := h.service.Create(ctx, h.owner, "Mix", "")
	require.NoError(t, err)

	_, err = h.service.AddVideo(ctx, h.owner, p.ID, uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = h.service.AddVideo(ctx, h.owner, p.ID, h.draft)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "someone else's draft cannot be added")
	_, err = h.service.AddVideo(ctx, h.owner, "bad", h.videos[0])
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = h.service.AddVideo(ctx, h.owner, uuid.NewString(), h.videos[0])
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = h.service.Create(ctx, h.owner, " <b></b> ", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = h.service.Create(ctx, "", "name", "")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}
