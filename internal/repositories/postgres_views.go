package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vidstream/backend/internal/db"
	"github.com/vidstream/backend/internal/models"
)

// PostgresReadRepository serves the joined, read-only records that the
// aggregation views are assembled from, plus the two side effects of opening
// a video.
type PostgresReadRepository struct {
	postgres
	videos *PostgresVideoRepository
	users  *PostgresUserRepository
}

// NewPostgresReadRepository constructs a read repository backed by PostgreSQL.
func NewPostgresReadRepository(pool db.Pool, opts ...Option) *PostgresReadRepository {
	return &PostgresReadRepository{
		postgres: newPostgres(pool, opts),
		videos:   NewPostgresVideoRepository(pool, opts...),
		users:    NewPostgresUserRepository(pool, opts...),
	}
}

var sortColumns = map[string]string{
	models.SortByCreatedAt: "v.created_at",
	models.SortByViews:     "v.views",
	models.SortByDuration:  "v.duration_seconds",
	models.SortByTitle:     "v.title",
}

var videoRecordSelect = `
    SELECT ` + prefixed("v", videoColumns) + `, ` + prefixed("u", publicUserColumns) + `,
           ARRAY(SELECT l.liked_by::TEXT FROM likes l WHERE l.video_id = v.id)
    FROM videos v
    JOIN users u ON u.id = v.owner_id`

func videoRecordDest(rec *models.VideoRecord) []any {
	return concat(videoDest(&rec.Video), userDest(&rec.Owner), []any{&rec.LikedBy})
}

func videoFilter(q models.VideoQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.PublishedOnly {
		conds = append(conds, "v.is_published")
	}
	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		conds = append(conds, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}
	if title := strings.TrimSpace(q.Title); title != "" {
		args = append(args, "%"+escapeLike(title)+"%")
		conds = append(conds, fmt.Sprintf("v.title ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func videoOrder(q models.VideoQuery) string {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[models.SortByCreatedAt]
	}
	direction := "DESC"
	if q.Ascending {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, v.id %s", column, direction, direction)
}

// ListVideos returns one page of videos matching q and the total match count.
func (r *PostgresReadRepository) ListVideos(ctx context.Context, q models.VideoQuery) ([]models.VideoRecord, int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	where, args := videoFilter(q)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM videos v`+where, args...).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count videos")
	}

	pageArgs := append(append([]any{}, args...), q.Limit, q.Offset)
	query := videoRecordSelect + where + videoOrder(q) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, translateError(err, "query videos")
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.VideoRecord, error) {
		var rec models.VideoRecord
		err := row.Scan(videoRecordDest(&rec)...)
		return rec, err
	})
	if err != nil {
		return nil, 0, translateError(err, "scan videos")
	}
	return records, total, nil
}

// FindVideoRecord fetches one video with its owner and likers.
func (r *PostgresReadRepository) FindVideoRecord(ctx context.Context, videoID string) (models.VideoRecord, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var rec models.VideoRecord
	if err := r.pool.QueryRow(ctx, videoRecordSelect+` WHERE v.id = $1`, videoID).Scan(videoRecordDest(&rec)...); err != nil {
		return models.VideoRecord{}, translateError(err, "select video record")
	}
	return rec, nil
}

func (r *PostgresReadRepository) IncrementViews(ctx context.Context, videoID string) error {
	return r.videos.IncrementViews(ctx, videoID)
}

func (r *PostgresReadRepository) AppendWatchHistory(ctx context.Context, entry models.WatchEntry) error {
	return r.users.AppendWatchHistory(ctx, entry)
}

var channelSelect = `
    SELECT ` + prefixed("u", publicUserColumns) + `,
           ARRAY(SELECT s.subscriber_id::TEXT FROM subscriptions s WHERE s.channel_id = u.id),
           ARRAY(SELECT s.channel_id::TEXT FROM subscriptions s WHERE s.subscriber_id = u.id)
    FROM users u`

func channelDest(rec *models.ChannelRecord) []any {
	return concat(userDest(&rec.User), []any{&rec.SubscriberIDs, &rec.SubscribedTo})
}

// FindChannel fetches a user with both directions of its subscriptions.
func (r *PostgresReadRepository) FindChannel(ctx context.Context, userID string) (models.ChannelRecord, error) {
	return r.findChannel(ctx, "u.id", userID)
}

func (r *PostgresReadRepository) FindChannelByUsername(ctx context.Context, username string) (models.ChannelRecord, error) {
	return r.findChannel(ctx, "u.username", username)
}

func (r *PostgresReadRepository) findChannel(ctx context.Context, column, value string) (models.ChannelRecord, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var rec models.ChannelRecord
	if err := r.pool.QueryRow(ctx, channelSelect+` WHERE `+column+` = $1`, value).Scan(channelDest(&rec)...); err != nil {
		return models.ChannelRecord{}, translateError(err, "select channel")
	}
	return rec, nil
}

// FindChannels returns channel records keyed by user id. Unknown ids are
// absent from the map.
func (r *PostgresReadRepository) FindChannels(ctx context.Context, ids []string) (map[string]models.ChannelRecord, error) {
	out := make(map[string]models.ChannelRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, channelSelect+` WHERE u.id = ANY($1::TEXT[]::UUID[])`, ids)
	if err != nil {
		return nil, translateError(err, "query channels")
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ChannelRecord, error) {
		var rec models.ChannelRecord
		err := row.Scan(channelDest(&rec)...)
		return rec, err
	})
	if err != nil {
		return nil, translateError(err, "scan channels")
	}
	for _, rec := range records {
		out[rec.User.ID] = rec
	}
	return out, nil
}

// UsersByIDs returns public user records keyed by id.
func (r *PostgresReadRepository) UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+publicUserColumns+` FROM users WHERE id = ANY($1::TEXT[]::UUID[])`, ids)
	if err != nil {
		return nil, translateError(err, "query users")
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := row.Scan(userDest(&u)...)
		return u, err
	})
	if err != nil {
		return nil, translateError(err, "scan users")
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// VideosByIDs returns videos keyed by id regardless of publication state.
func (r *PostgresReadRepository) VideosByIDs(ctx context.Context, ids []string) (map[string]models.Video, error) {
	out := make(map[string]models.Video, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ANY($1::TEXT[]::UUID[])`, ids)
	if err != nil {
		return nil, translateError(err, "query videos by id")
	}
	videos, err := pgx.CollectRows(rows, scanVideo)
	if err != nil {
		return nil, translateError(err, "scan videos by id")
	}
	for _, v := range videos {
		out[v.ID] = v
	}
	return out, nil
}

func scanVideo(row pgx.CollectableRow) (models.Video, error) {
	var v models.Video
	err := row.Scan(videoDest(&v)...)
	return v, err
}

// ListComments returns a page of a video's comments, newest first.
func (r *PostgresReadRepository) ListComments(ctx context.Context, videoID string, offset, limit int) ([]models.CommentRecord, int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM comments WHERE video_id = $1`, videoID).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count comments")
	}

	rows, err := r.pool.Query(ctx, `
        SELECT c.id, c.video_id, c.owner_id, c.content, c.created_at, c.updated_at, `+prefixed("u", publicUserColumns)+`,
               ARRAY(SELECT l.liked_by::TEXT FROM likes l WHERE l.comment_id = c.id)
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC, c.id DESC
        LIMIT $2 OFFSET $3
    `, videoID, limit, offset)
	if err != nil {
		return nil, 0, translateError(err, "query comments")
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CommentRecord, error) {
		var rec models.CommentRecord
		c := &rec.Comment
		err := row.Scan(concat(
			[]any{&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt},
			userDest(&rec.Owner),
			[]any{&rec.LikedBy},
		)...)
		return rec, err
	})
	if err != nil {
		return nil, 0, translateError(err, "scan comments")
	}
	return records, total, nil
}

// ListTweets returns a page of a user's tweets, newest first.
func (r *PostgresReadRepository) ListTweets(ctx context.Context, ownerID string, offset, limit int) ([]models.TweetRecord, int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tweets WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count tweets")
	}

	rows, err := r.pool.Query(ctx, `
        SELECT t.id, t.owner_id, t.content, t.created_at, t.updated_at, `+prefixed("u", publicUserColumns)+`,
               ARRAY(SELECT l.liked_by::TEXT FROM likes l WHERE l.tweet_id = t.id)
        FROM tweets t
        JOIN users u ON u.id = t.owner_id
        WHERE t.owner_id = $1
        ORDER BY t.created_at DESC, t.id DESC
        LIMIT $2 OFFSET $3
    `, ownerID, limit, offset)
	if err != nil {
		return nil, 0, translateError(err, "query tweets")
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TweetRecord, error) {
		var rec models.TweetRecord
		t := &rec.Tweet
		err := row.Scan(concat(
			[]any{&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt},
			userDest(&rec.Owner),
			[]any{&rec.LikedBy},
		)...)
		return rec, err
	})
	if err != nil {
		return nil, 0, translateError(err, "scan tweets")
	}
	return records, total, nil
}

// ListSubscribers returns a page of subscriptions to the channel, newest first.
func (r *PostgresReadRepository) ListSubscribers(ctx context.Context, channelID string, offset, limit int) ([]models.Subscription, int, error) {
	return r.listSubscriptions(ctx, "channel_id", channelID, offset, limit)
}

// ListSubscriptions returns a page of the subscriber's subscriptions, newest first.
func (r *PostgresReadRepository) ListSubscriptions(ctx context.Context, subscriberID string, offset, limit int) ([]models.Subscription, int, error) {
	return r.listSubscriptions(ctx, "subscriber_id", subscriberID, offset, limit)
}

func (r *PostgresReadRepository) listSubscriptions(ctx context.Context, column, id string, offset, limit int) ([]models.Subscription, int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM subscriptions WHERE `+column+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count subscriptions")
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, subscriber_id, channel_id, created_at FROM subscriptions
        WHERE `+column+` = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, id, limit, offset)
	if err != nil {
		return nil, 0, translateError(err, "query subscriptions")
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Subscription, error) {
		var s models.Subscription
		err := row.Scan(&s.ID, &s.SubscriberID, &s.ChannelID, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, 0, translateError(err, "scan subscriptions")
	}
	return subs, total, nil
}

// LatestVideos returns the most recent published video of each owner that
// has one.
func (r *PostgresReadRepository) LatestVideos(ctx context.Context, ownerIDs []string) (map[string]models.Video, error) {
	out := make(map[string]models.Video, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
        SELECT DISTINCT ON (owner_id) `+videoColumns+`
        FROM videos
        WHERE owner_id = ANY($1::TEXT[]::UUID[]) AND is_published
        ORDER BY owner_id, created_at DESC, id DESC
    `, ownerIDs)
	if err != nil {
		return nil, translateError(err, "query latest videos")
	}
	videos, err := pgx.CollectRows(rows, scanVideo)
	if err != nil {
		return nil, translateError(err, "scan latest videos")
	}
	for _, v := range videos {
		out[v.OwnerID] = v
	}
	return out, nil
}

// RecentVideoLikes returns the user's most recent likes on published videos.
func (r *PostgresReadRepository) RecentVideoLikes(ctx context.Context, userID string, limit int) ([]models.LikedVideoRecord, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
        SELECT l.created_at, `+prefixed("v", videoColumns)+`, `+prefixed("u", publicUserColumns)+`
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND v.is_published
        ORDER BY l.created_at DESC, l.id DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, translateError(err, "query liked videos")
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LikedVideoRecord, error) {
		var rec models.LikedVideoRecord
		err := row.Scan(concat([]any{&rec.LikedAt}, videoDest(&rec.Video), userDest(&rec.Owner))...)
		return rec, err
	})
	if err != nil {
		return nil, translateError(err, "scan liked videos")
	}
	return records, nil
}

func (r *PostgresReadRepository) FindPlaylist(ctx context.Context, id string) (models.Playlist, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var p models.Playlist
	if err := r.pool.QueryRow(ctx, playlistSelect+` WHERE p.id = $1`, id).Scan(playlistDest(&p)...); err != nil {
		return models.Playlist{}, translateError(err, "select playlist")
	}
	return p, nil
}

// ListPlaylists returns a page of a user's playlists, most recently updated first.
func (r *PostgresReadRepository) ListPlaylists(ctx context.Context, ownerID string, offset, limit int) ([]models.Playlist, int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM playlists WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count playlists")
	}

	rows, err := r.pool.Query(ctx, playlistSelect+`
        WHERE p.owner_id = $1
        ORDER BY p.updated_at DESC, p.id DESC
        LIMIT $2 OFFSET $3
    `, ownerID, limit, offset)
	if err != nil {
		return nil, 0, translateError(err, "query playlists")
	}
	playlists, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Playlist, error) {
		var p models.Playlist
		err := row.Scan(playlistDest(&p)...)
		return p, err
	})
	if err != nil {
		return nil, 0, translateError(err, "scan playlists")
	}
	return playlists, total, nil
}

// ListWatchHistory returns a page of the user's history over published
// videos, most recent first. Repeat views appear once per view.
func (r *PostgresReadRepository) ListWatchHistory(ctx context.Context, userID string, offset, limit int) ([]models.WatchRecord, int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var total int
	if err := r.pool.QueryRow(ctx, `
        SELECT count(*) FROM watch_history h JOIN videos v ON v.id = h.video_id
        WHERE h.user_id = $1 AND v.is_published
    `, userID).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count watch history")
	}

	rows, err := r.pool.Query(ctx, `
        SELECT h.watched_at, `+prefixed("v", videoColumns)+`, `+prefixed("u", publicUserColumns)+`
        FROM watch_history h
        JOIN videos v ON v.id = h.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE h.user_id = $1 AND v.is_published
        ORDER BY h.watched_at DESC, h.id DESC
        LIMIT $2 OFFSET $3
    `, userID, limit, offset)
	if err != nil {
		return nil, 0, translateError(err, "query watch history")
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.WatchRecord, error) {
		var rec models.WatchRecord
		err := row.Scan(concat([]any{&rec.WatchedAt}, videoDest(&rec.Video), userDest(&rec.Owner))...)
		return rec, err
	})
	if err != nil {
		return nil, 0, translateError(err, "scan watch history")
	}
	return records, total, nil
}

// ChannelTotals aggregates every video of the channel, published or not.
func (r *PostgresReadRepository) ChannelTotals(ctx context.Context, channelID string) (models.ChannelTotals, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var totals models.ChannelTotals
	err := r.pool.QueryRow(ctx, `
        SELECT count(*),
               COALESCE(sum(v.views), 0)::BIGINT,
               (SELECT count(*) FROM likes l JOIN videos lv ON lv.id = l.video_id WHERE lv.owner_id = $1)
        FROM videos v
        WHERE v.owner_id = $1
    `, channelID).Scan(&totals.Videos, &totals.Views, &totals.Likes)
	if err != nil {
		return models.ChannelTotals{}, translateError(err, "aggregate channel")
	}
	return totals, nil
}
