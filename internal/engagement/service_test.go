package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/relations"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/repositories/memory"
)

var now = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

type harness struct {
	service *Service
	store   *memory.Store
	alice   string
	bob     string
	video   string
	draft   string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	h := harness{store: store, alice: uuid.NewString(), bob: uuid.NewString(), video: uuid.NewString(), draft: uuid.NewString()}
	for name, id := range map[string]string{"alice": h.alice, "bob": h.bob} {
		require.NoError(t, store.Users().Create(ctx, models.User{ID: id, Username: name, Email: name + "@example.com"}))
	}
	require.NoError(t, store.Videos().Create(ctx, models.Video{ID: h.video, OwnerID: h.bob, Title: "clip", IsPublished: true}))
	require.NoError(t, store.Videos().Create(ctx, models.Video{ID: h.draft, OwnerID: h.bob, Title: "draft"}))

	engine := relations.NewEngine(store.Relations(), nil)
	h.service = NewService(store.Comments(), store.Tweets(), store.Videos(), engine, WithClock(func() time.Time { return now }))
	return h
}

func TestCommentLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	comment, err := h.service.AddComment(ctx, h.alice, h.video, "  <i>nice</i> work ")
	require.NoError(t, err)
	assert.Equal(t, "nice work", comment.Content)
	assert.Equal(t, now, comment.CreatedAt)

	updated, err := h.service.UpdateComment(ctx, h.alice, comment.ID, "great work")
	require.NoError(t, err)
	assert.Equal(t, "great work", updated.Content)

	stored, err := h.store.Comments().FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "great work", stored.Content)

	require.NoError(t, h.service.DeleteComment(ctx, h.alice, comment.ID))
	_, err = h.store.Comments().FindByID(ctx, comment.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeleteCommentByStrangerIsForbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	comment, err := h.service.AddComment(ctx, h.alice, h.video, "mine")
	require.NoError(t, err)

	err = h.service.DeleteComment(ctx, h.bob, comment.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden, "even the video owner cannot delete another user's comment")

	_, err = h.service.UpdateComment(ctx, h.bob, comment.ID, "edited")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = h.store.Comments().FindByID(ctx, comment.ID)
	assert.NoError(t, err)
}

func TestAddCommentValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.AddComment(ctx, "", h.video, "hi")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	_, err = h.service.AddComment(ctx, h.alice, "nope", "hi")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = h.service.AddComment(ctx, h.alice, h.video, "<script>x</script>")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = h.service.AddComment(ctx, h.alice, uuid.NewString(), "hi")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = h.service.AddComment(ctx, h.alice, h.draft, "hi")
	assert.ErrorIs(t, err, apperror.ErrNotFound, "drafts are hidden from other users")

	_, err = h.service.AddComment(ctx, h.bob, h.draft, "note to self")
	assert.NoError(t, err)
}

func TestTweetLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tweet, err := h.service.CreateTweet(ctx, h.alice, "hello world")
	require.NoError(t, err)

	_, err = h.service.UpdateTweet(ctx, h.bob, tweet.ID, "pwned")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := h.service.UpdateTweet(ctx, h.alice, tweet.ID, "hello again")
	require.NoError(t, err)
	assert.Equal(t, "hello again", updated.Content)

	assert.ErrorIs(t, h.service.DeleteTweet(ctx, h.bob, tweet.ID), apperror.ErrForbidden)
	require.NoError(t, h.service.DeleteTweet(ctx, h.alice, tweet.ID))
	assert.ErrorIs(t, h.service.DeleteTweet(ctx, h.alice, tweet.ID), apperror.ErrNotFound)

	_, err = h.service.CreateTweet(ctx, h.alice, "   ")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestToggles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	comment, err := h.service.AddComment(ctx, h.alice, h.video, "first")
	require.NoError(t, err)
	tweet, err := h.service.CreateTweet(ctx, h.bob, "news")
	require.NoError(t, err)

	toggles := []struct {
		name   string
		toggle func() (relations.State, error)
	}{
		{"video", func() (relations.State, error) { return h.service.ToggleVideoLike(ctx, h.alice, h.video) }},
		{"comment", func() (relations.State, error) { return h.service.ToggleCommentLike(ctx, h.bob, comment.ID) }},
		{"tweet", func() (relations.State, error) { return h.service.ToggleTweetLike(ctx, h.alice, tweet.ID) }},
		{"subscription", func() (relations.State, error) { return h.service.ToggleSubscription(ctx, h.alice, h.bob) }},
		{"self subscription", func() (relations.State, error) { return h.service.ToggleSubscription(ctx, h.bob, h.bob) }},
	}
	for _, tt := range toggles {
		t.Run(tt.name, func(t *testing.T) {
			on, err := tt.toggle()
			require.NoError(t, err)
			assert.True(t, on.Active)
			off, err := tt.toggle()
			require.NoError(t, err)
			assert.False(t, off.Active)
		})
	}

	_, err = h.service.ToggleVideoLike(ctx, h.alice, uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestToggleVideoLikeHidesDrafts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.ToggleVideoLike(ctx, h.alice, h.draft)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "a stranger cannot tell a draft exists")
	_, err = h.store.Relations().FindRelation(ctx, models.RelationKey{Kind: models.VideoLike, ActorID: h.alice, ObjectID: h.draft})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	state, err := h.service.ToggleVideoLike(ctx, h.bob, h.draft)
	require.NoError(t, err)
	assert.True(t, state.Active)

	_, err = h.service.ToggleVideoLike(ctx, "", h.video)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	_, err = h.service.ToggleVideoLike(ctx, h.alice, "nope")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestDeletingCommentDropsItsLikes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	comment, err := h.service.AddComment(ctx, h.alice, h.video, "liked")
	require.NoError(t, err)
	_, err = h.service.ToggleCommentLike(ctx, h.bob, comment.ID)
	require.NoError(t, err)

	require.NoError(t, h.service.DeleteComment(ctx, h.alice, comment.ID))
	_, err = h.store.Relations().FindRelation(ctx, models.RelationKey{Kind: models.CommentLike, ActorID: h.bob, ObjectID: comment.ID})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
