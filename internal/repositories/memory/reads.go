package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
)

// Reads serves the joined records behind the aggregation views.
type Reads struct{ s *Store }

func (r *Reads) ListVideos(_ context.Context, q models.VideoQuery) ([]models.VideoRecord, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, 0, err
	}

	title := strings.ToLower(strings.TrimSpace(q.Title))
	var matched []models.Video
	for _, v := range r.s.videos {
		if q.PublishedOnly && !v.IsPublished {
			continue
		}
		if q.OwnerID != "" && v.OwnerID != q.OwnerID {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(v.Title), title) {
			continue
		}
		matched = append(matched, v)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		less, equal := compareVideos(a, b, q.SortBy)
		if equal {
			less = a.ID < b.ID
		}
		if q.Ascending {
			return less
		}
		return !less
	})

	records := make([]models.VideoRecord, 0, len(matched))
	for _, v := range page(matched, q.Offset, q.Limit) {
		records = append(records, r.s.videoRecord(v))
	}
	return records, len(matched), nil
}

// compareVideos reports whether a sorts before b ascending, and whether the
// sort key ties.
func compareVideos(a, b models.Video, sortBy string) (less, equal bool) {
	switch sortBy {
	case models.SortByViews:
		return a.Views < b.Views, a.Views == b.Views
	case models.SortByDuration:
		return a.Duration < b.Duration, a.Duration == b.Duration
	case models.SortByTitle:
		return a.Title < b.Title, a.Title == b.Title
	}
	return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
}

func (s *Store) videoRecord(v models.Video) models.VideoRecord {
	return models.VideoRecord{Video: v, Owner: s.publicUser(v.OwnerID), LikedBy: s.likers(models.VideoLike, v.ID)}
}

func (s *Store) publicUser(id string) models.User {
	u := s.users[id]
	u.Password = ""
	return u
}

func (r *Reads) FindVideoRecord(_ context.Context, videoID string) (models.VideoRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.VideoRecord{}, err
	}
	v, ok := r.s.videos[videoID]
	if !ok {
		return models.VideoRecord{}, repositories.ErrNotFound
	}
	return r.s.videoRecord(v), nil
}

func (r *Reads) IncrementViews(ctx context.Context, videoID string) error {
	return r.s.Videos().IncrementViews(ctx, videoID)
}

func (r *Reads) AppendWatchHistory(ctx context.Context, entry models.WatchEntry) error {
	return r.s.Users().AppendWatchHistory(ctx, entry)
}

func (s *Store) channel(u models.User) models.ChannelRecord {
	rec := models.ChannelRecord{User: u, SubscriberIDs: []string{}, SubscribedTo: []string{}}
	rec.User.Password = ""
	for _, sub := range s.subs {
		if sub.ChannelID == u.ID {
			rec.SubscriberIDs = append(rec.SubscriberIDs, sub.SubscriberID)
		}
		if sub.SubscriberID == u.ID {
			rec.SubscribedTo = append(rec.SubscribedTo, sub.ChannelID)
		}
	}
	return rec
}

func (r *Reads) FindChannel(_ context.Context, userID string) (models.ChannelRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.ChannelRecord{}, err
	}
	u, ok := r.s.users[userID]
	if !ok {
		return models.ChannelRecord{}, repositories.ErrNotFound
	}
	return r.s.channel(u), nil
}

func (r *Reads) FindChannelByUsername(_ context.Context, username string) (models.ChannelRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.ChannelRecord{}, err
	}
	for _, u := range r.s.users {
		if u.Username == username {
			return r.s.channel(u), nil
		}
	}
	return models.ChannelRecord{}, repositories.ErrNotFound
}

func (r *Reads) FindChannels(_ context.Context, ids []string) (map[string]models.ChannelRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, err
	}
	out := make(map[string]models.ChannelRecord, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = r.s.channel(u)
		}
	}
	return out, nil
}

func (r *Reads) UsersByIDs(_ context.Context, ids []string) (map[string]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, err
	}
	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if _, ok := r.s.users[id]; ok {
			out[id] = r.s.publicUser(id)
		}
	}
	return out, nil
}

func (r *Reads) VideosByIDs(_ context.Context, ids []string) (map[string]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, err
	}
	out := make(map[string]models.Video, len(ids))
	for _, id := range ids {
		if v, ok := r.s.videos[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (r *Reads) ListComments(_ context.Context, videoID string, offset, limit int) ([]models.CommentRecord, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, 0, err
	}
	var comments []models.Comment
	for _, c := range r.s.comments {
		if c.VideoID == videoID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return newerFirst(comments[i].CreatedAt, comments[j].CreatedAt, comments[i].ID, comments[j].ID)
	})

	records := make([]models.CommentRecord, 0, len(comments))
	for _, c := range page(comments, offset, limit) {
		records = append(records, models.CommentRecord{
			Comment: c,
			Owner:   r.s.publicUser(c.OwnerID),
			LikedBy: r.s.likers(models.CommentLike, c.ID),
		})
	}
	return records, len(comments), nil
}

func (r *Reads) ListTweets(_ context.Context, ownerID string, offset, limit int) ([]models.TweetRecord, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, 0, err
	}
	var tweets []models.Tweet
	for _, t := range r.s.tweets {
		if t.OwnerID == ownerID {
			tweets = append(tweets, t)
		}
	}
	sort.Slice(tweets, func(i, j int) bool {
		return newerFirst(tweets[i].CreatedAt, tweets[j].CreatedAt, tweets[i].ID, tweets[j].ID)
	})

	records := make([]models.TweetRecord, 0, len(tweets))
	for _, t := range page(tweets, offset, limit) {
		records = append(records, models.TweetRecord{
			Tweet:   t,
			Owner:   r.s.publicUser(t.OwnerID),
			LikedBy: r.s.likers(models.TweetLike, t.ID),
		})
	}
	return records, len(tweets), nil
}

func (r *Reads) ListSubscribers(_ context.Context, channelID string, offset, limit int) ([]models.Subscription, int, error) {
	return r.listSubscriptions(func(s models.Subscription) bool { return s.ChannelID == channelID }, offset, limit)
}

func (r *Reads) ListSubscriptions(_ context.Context, subscriberID string, offset, limit int) ([]models.Subscription, int, error) {
	return r.listSubscriptions(func(s models.Subscription) bool { return s.SubscriberID == subscriberID }, offset, limit)
}

func (r *Reads) listSubscriptions(match func(models.Subscription) bool, offset, limit int) ([]models.Subscription, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, 0, err
	}
	var subs []models.Subscription
	for _, s := range r.s.subs {
		if match(s) {
			subs = append(subs, s)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return newerFirst(subs[i].CreatedAt, subs[j].CreatedAt, subs[i].ID, subs[j].ID)
	})
	return page(subs, offset, limit), len(subs), nil
}

func (r *Reads) LatestVideos(_ context.Context, ownerIDs []string) (map[string]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		wanted[id] = true
	}
	out := make(map[string]models.Video)
	for _, v := range r.s.videos {
		if !v.IsPublished || !wanted[v.OwnerID] {
			continue
		}
		if cur, ok := out[v.OwnerID]; !ok || newerFirst(v.CreatedAt, cur.CreatedAt, v.ID, cur.ID) {
			out[v.OwnerID] = v
		}
	}
	return out, nil
}

func (r *Reads) RecentVideoLikes(_ context.Context, userID string, limit int) ([]models.LikedVideoRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, err
	}
	var likes []models.Like
	for _, l := range r.s.likes {
		if l.Kind != models.VideoLike || l.LikedBy != userID {
			continue
		}
		if v, ok := r.s.videos[l.TargetID]; ok && v.IsPublished {
			likes = append(likes, l)
		}
	}
	sort.Slice(likes, func(i, j int) bool {
		return newerFirst(likes[i].CreatedAt, likes[j].CreatedAt, likes[i].ID, likes[j].ID)
	})

	records := make([]models.LikedVideoRecord, 0, len(likes))
	for _, l := range page(likes, 0, limit) {
		v := r.s.videos[l.TargetID]
		records = append(records, models.LikedVideoRecord{LikedAt: l.CreatedAt, Video: v, Owner: r.s.publicUser(v.OwnerID)})
	}
	return records, nil
}

func (r *Reads) FindPlaylist(_ context.Context, id string) (models.Playlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.Playlist{}, err
	}
	return r.s.playlist(id)
}

func (r *Reads) ListPlaylists(_ context.Context, ownerID string, offset, limit int) ([]models.Playlist, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, 0, err
	}
	var playlists []models.Playlist
	for id, p := range r.s.playlists {
		if p.OwnerID == ownerID {
			full, _ := r.s.playlist(id)
			playlists = append(playlists, full)
		}
	}
	sort.Slice(playlists, func(i, j int) bool {
		return newerFirst(playlists[i].UpdatedAt, playlists[j].UpdatedAt, playlists[i].ID, playlists[j].ID)
	})
	return page(playlists, offset, limit), len(playlists), nil
}

func (r *Reads) ListWatchHistory(_ context.Context, userID string, offset, limit int) ([]models.WatchRecord, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return nil, 0, err
	}
	var entries []watch
	for _, w := range r.s.history {
		if v, ok := r.s.videos[w.entry.VideoID]; w.entry.UserID == userID && ok && v.IsPublished {
			entries = append(entries, w)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.entry.WatchedAt.Equal(b.entry.WatchedAt) {
			return a.entry.WatchedAt.After(b.entry.WatchedAt)
		}
		return a.seq > b.seq
	})

	records := make([]models.WatchRecord, 0, len(entries))
	for _, w := range page(entries, offset, limit) {
		v := r.s.videos[w.entry.VideoID]
		records = append(records, models.WatchRecord{WatchedAt: w.entry.WatchedAt, Video: v, Owner: r.s.publicUser(v.OwnerID)})
	}
	return records, len(entries), nil
}

func (r *Reads) ChannelTotals(_ context.Context, channelID string) (models.ChannelTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.ChannelTotals{}, err
	}
	var totals models.ChannelTotals
	for _, v := range r.s.videos {
		if v.OwnerID != channelID {
			continue
		}
		totals.Videos++
		totals.Views += v.Views
		totals.Likes += int64(len(r.s.likers(models.VideoLike, v.ID)))
	}
	return totals, nil
}
