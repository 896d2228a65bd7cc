package relations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/metrics"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/repositories/memory"
)

type fixture struct {
	store   *memory.Store
	alice   string
	bob     string
	videoID string
	tweetID string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	f := fixture{store: store, alice: uuid.NewString(), bob: uuid.NewString(), videoID: uuid.NewString(), tweetID: uuid.NewString()}

	for name, id := range map[string]string{"alice": f.alice, "bob": f.bob} {
		require.NoError(t, store.Users().Create(ctx, models.User{ID: id, Username: name, Email: name + "@example.com"}))
	}
	require.NoError(t, store.Videos().Create(ctx, models.Video{ID: f.videoID, OwnerID: f.bob, Title: "clip", IsPublished: true}))
	require.NoError(t, store.Tweets().Create(ctx, models.Tweet{ID: f.tweetID, OwnerID: f.bob, Content: "hi"}))
	return f
}

func TestToggleTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	engine := NewEngine(f.store.Relations(), nil)
	ctx := context.Background()

	for _, tc := range []struct {
		kind   models.RelationKind
		object string
	}{
		{models.VideoLike, f.videoID},
		{models.TweetLike, f.tweetID},
		{models.SubscriptionRelation, f.bob},
	} {
		first, err := engine.Toggle(ctx, tc.kind, f.alice, tc.object)
		require.NoError(t, err)
		assert.True(t, first.Active, "%s should become active", tc.kind)

		second, err := engine.Toggle(ctx, tc.kind, f.alice, tc.object)
		require.NoError(t, err)
		assert.False(t, second.Active, "%s should become inactive", tc.kind)

		_, err = f.store.Relations().FindRelation(ctx, models.RelationKey{Kind: tc.kind, ActorID: f.alice, ObjectID: tc.object})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	}
}

func TestToggleSelfSubscriptionIsAllowed(t *testing.T) {
	f := newFixture(t)
	engine := NewEngine(f.store.Relations(), nil)

	state, err := engine.Toggle(context.Background(), models.SubscriptionRelation, f.alice, f.alice)
	require.NoError(t, err)
	assert.True(t, state.Active)
}

func TestToggleValidatesReferences(t *testing.T) {
	f := newFixture(t)
	engine := NewEngine(f.store.Relations(), nil)
	ctx := context.Background()

	_, err := engine.Toggle(ctx, models.VideoLike, f.alice, "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = engine.Toggle(ctx, models.VideoLike, "", f.videoID)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = engine.Toggle(ctx, models.RelationKind("bogus"), f.alice, f.videoID)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = engine.Toggle(ctx, models.CommentLike, f.alice, uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// racingStore simulates a concurrent toggle winning between the lookup and
// the write.
type racingStore struct {
	Store
	createErr error
	deleteErr error
	found     bool
}

func (s racingStore) FindRelation(context.Context, models.RelationKey) (string, error) {
	if s.found {
		return uuid.NewString(), nil
	}
	return "", repositories.ErrNotFound
}

func (s racingStore) CreateRelation(context.Context, models.RelationKey, string, time.Time) error {
	return s.createErr
}

func (s racingStore) DeleteRelation(context.Context, models.RelationKey, string) error {
	return s.deleteErr
}

func TestToggleLosingARace(t *testing.T) {
	ctx := context.Background()
	actor, object := uuid.NewString(), uuid.NewString()

	state, err := NewEngine(racingStore{createErr: repositories.ErrConflict}, nil).Toggle(ctx, models.VideoLike, actor, object)
	require.NoError(t, err)
	assert.True(t, state.Active, "a duplicate insert means the relation exists")

	state, err = NewEngine(racingStore{found: true, deleteErr: repositories.ErrNotFound}, nil).Toggle(ctx, models.VideoLike, actor, object)
	require.NoError(t, err)
	assert.False(t, state.Active, "a delete that finds nothing means the relation is gone")
}

func TestToggleMapsUnavailableStore(t *testing.T) {
	f := newFixture(t)
	engine := NewEngine(f.store.Relations(), nil)
	f.store.FailWith(repositories.ErrUnavailable)

	_, err := engine.Toggle(context.Background(), models.VideoLike, f.alice, f.videoID)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}

func TestToggleRecordsMetrics(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewRegistry()
	engine := NewEngine(f.store.Relations(), metrics.NewCollector(reg))
	ctx := context.Background()

	_, err := engine.Toggle(ctx, models.VideoLike, f.alice, f.videoID)
	require.NoError(t, err)
	_, err = engine.Toggle(ctx, models.VideoLike, f.alice, f.videoID)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	series := 0
	for _, mf := range families {
		if mf.GetName() == "vidstream_relation_toggles_total" {
			series = len(mf.GetMetric())
		}
	}
	assert.Equal(t, 2, series, "one series per resulting state")
}
