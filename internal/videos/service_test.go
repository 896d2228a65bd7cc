package videos

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/repositories/memory"
	"github.com/vidstream/backend/internal/storage"
)

var now = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

type harness struct {
	service *Service
	store   *memory.Store
	media   *storage.MemoryStore
	owner   string
	other   string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	h := harness{store: memory.NewStore(), media: storage.NewMemoryStore(""), owner: uuid.NewString(), other: uuid.NewString()}
	for name, id := range map[string]string{"owner": h.owner, "other": h.other} {
		require.NoError(t, h.store.Users().Create(context.Background(), models.User{ID: id, Username: name, Email: name + "@example.com"}))
	}
	h.service = NewService(h.store.Videos(), h.media, WithClock(func() time.Time { return now }))
	return h
}

func upload(name string) *storage.Upload {
	return &storage.Upload{Filename: name, ContentType: "application/octet-stream", Content: strings.NewReader(name)}
}

func draft() Draft {
	return Draft{
		Title:       "Launch day",
		Description: "Behind the <b>scenes</b>",
		Duration:    42,
		VideoFile:   upload("launch.mp4"),
		Thumbnail:   upload("launch.jpg"),
	}
}

type failingNth struct {
	storage.MediaStore
	mu    sync.Mutex
	n     int
	calls int
}

func (f *failingNth) Store(ctx context.Context, name, contentType string, content io.Reader) (models.MediaAsset, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls == f.n
	f.mu.Unlock()
	if fail {
		return models.MediaAsset{}, errors.New("bucket offline")
	}
	return f.MediaStore.Store(ctx, name, contentType, content)
}

func TestPublish(t *testing.T) {
	h := newHarness(t)

	video, err := h.service.Publish(context.Background(), h.owner, draft())
	require.NoError(t, err)
	assert.True(t, video.IsPublished)
	assert.Equal(t, "Behind the scenes", video.Description)
	assert.Equal(t, 42.0, video.Duration, "falls back to the client duration")
	assert.Equal(t, now, video.CreatedAt)
	assert.Equal(t, 2, h.media.Len())

	stored, err := h.store.Videos().FindByID(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, h.owner, stored.OwnerID)
}

func TestPublishPrefersStoreDuration(t *testing.T) {
	h := newHarness(t)
	h.media.ReportDuration(12.5)

	video, err := h.service.Publish(context.Background(), h.owner, draft())
	require.NoError(t, err)
	assert.Equal(t, 12.5, video.Duration)
}

func TestPublishValidation(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name   string
		mutate func(*Draft)
		field  string
	}{
		{"title", func(d *Draft) { d.Title = "<p> </p>" }, "title"},
		{"description", func(d *Draft) { d.Description = "" }, "description"},
		{"video file", func(d *Draft) { d.VideoFile = nil }, "videoFile"},
		{"thumbnail", func(d *Draft) { d.Thumbnail = nil }, "thumbnail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := draft()
			tt.mutate(&in)
			_, err := h.service.Publish(context.Background(), h.owner, in)
			require.ErrorIs(t, err, apperror.ErrInvalidInput)
			assert.Equal(t, tt.field, apperror.FieldOf(err))
		})
	}
	assert.Zero(t, h.media.Len())

	_, err := h.service.Publish(context.Background(), "", draft())
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestPublishThumbnailFailureRemovesVideoFile(t *testing.T) {
	h := newHarness(t)
	service := NewService(h.store.Videos(), &failingNth{MediaStore: h.media, n: 2})

	_, err := service.Publish(context.Background(), h.owner, draft())
	assert.ErrorIs(t, err, apperror.ErrUpload)
	assert.Zero(t, h.media.Len(), "the uploaded video file is cleaned up")
}

func TestPublishForUnknownOwner(t *testing.T) {
	h := newHarness(t)
	_, err := h.service.Publish(context.Background(), uuid.NewString(), draft())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, h.media.Len())
}

func TestUpdate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	video, err := h.service.Publish(ctx, h.owner, draft())
	require.NoError(t, err)

	_, err = h.service.Update(ctx, h.other, video.ID, Changes{Title: "Hijacked"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := h.service.Update(ctx, h.owner, video.ID, Changes{Title: "Launch week", Thumbnail: upload("new.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "Launch week", updated.Title)
	assert.Equal(t, video.Description, updated.Description)
	assert.NotEqual(t, video.Thumbnail.StorageID, updated.Thumbnail.StorageID)
	assert.False(t, h.media.Has(video.Thumbnail.StorageID), "old thumbnail removed")
	assert.True(t, h.media.Has(updated.Thumbnail.StorageID))

	_, err = h.service.Update(ctx, h.owner, video.ID, Changes{})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = h.service.Update(ctx, h.owner, uuid.NewString(), Changes{Title: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = h.service.Update(ctx, h.owner, "bogus", Changes{Title: "x"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestTogglePublishRequiresOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	video, err := h.service.Publish(ctx, h.owner, draft())
	require.NoError(t, err)

	_, err = h.service.TogglePublish(ctx, h.other, video.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	hidden, err := h.service.TogglePublish(ctx, h.owner, video.ID)
	require.NoError(t, err)
	assert.False(t, hidden.IsPublished)

	shown, err := h.service.TogglePublish(ctx, h.owner, video.ID)
	require.NoError(t, err)
	assert.True(t, shown.IsPublished)
}

func TestDeleteRemovesFilesAndRelations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	video, err := h.service.Publish(ctx, h.owner, draft())
	require.NoError(t, err)
	key := models.RelationKey{Kind: models.VideoLike, ActorID: h.other, ObjectID: video.ID}
	require.NoError(t, h.store.Relations().CreateRelation(ctx, key, uuid.NewString(), now))

	assert.ErrorIs(t, h.service.Delete(ctx, h.other, video.ID), apperror.ErrForbidden)
	require.NoError(t, h.service.Delete(ctx, h.owner, video.ID))

	_, err = h.store.Videos().FindByID(ctx, video.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = h.store.Relations().FindRelation(ctx, key)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Zero(t, h.media.Len())

	assert.ErrorIs(t, h.service.Delete(ctx, h.owner, video.ID), apperror.ErrNotFound)
}
