package memory

import (
	"context"
	"time"

	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
)

// Users implements the user repository, the refresh credential store and the
// watch history append.
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if _, ok := r.s.users[user.ID]; ok || r.s.usernameOrEmailTaken(user) {
		return repositories.ErrConflict
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *Users) FindByID(_ context.Context, id string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *Users) FindByUsername(_ context.Context, username string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *Users) FindByEmail(_ context.Context, email string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *Users) find(match func(models.User) bool) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.User{}, err
	}
	for _, u := range r.s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (r *Users) Update(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	existing, ok := r.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.s.usernameOrEmailTaken(models.User{ID: user.ID, Username: existing.Username, Email: user.Email}) {
		return repositories.ErrConflict
	}
	existing.Email = user.Email
	existing.FullName = user.FullName
	existing.Password = user.Password
	existing.Avatar = user.Avatar
	existing.CoverImage = user.CoverImage
	existing.UpdatedAt = user.UpdatedAt
	r.s.users[user.ID] = existing
	return nil
}

func (r *Users) StoreRefreshToken(_ context.Context, userID, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if _, ok := r.s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.refresh[userID] = &token
	return nil
}

func (r *Users) LoadRefreshToken(_ context.Context, userID string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return "", err
	}
	if _, ok := r.s.users[userID]; !ok {
		return "", repositories.ErrNotFound
	}
	if token := r.s.refresh[userID]; token != nil {
		return *token, nil
	}
	return "", nil
}

func (r *Users) SwapRefreshToken(_ context.Context, userID, current, next string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return false, err
	}
	token := r.s.refresh[userID]
	if token == nil || *token != current {
		return false, nil
	}
	r.s.refresh[userID] = &next
	return true, nil
}

func (r *Users) ClearRefreshToken(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if _, ok := r.s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.refresh, userID)
	return nil
}

func (r *Users) AppendWatchHistory(_ context.Context, entry models.WatchEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if _, ok := r.s.users[entry.UserID]; !ok {
		return repositories.ErrNotFound
	}
	if _, ok := r.s.videos[entry.VideoID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.seq++
	r.s.history = append(r.s.history, watch{seq: r.s.seq, entry: entry})
	return nil
}

// Videos implements the video repository.
type Videos struct{ s *Store }

func (r *Videos) Create(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if _, ok := r.s.users[video.OwnerID]; !ok {
		return repositories.ErrNotFound
	}
	if _, ok := r.s.videos[video.ID]; ok {
		return repositories.ErrConflict
	}
	r.s.videos[video.ID] = video
	return nil
}

func (r *Videos) FindByID(_ context.Context, id string) (models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.Video{}, err
	}
	v, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return v, nil
}

func (r *Videos) Update(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	existing, ok := r.s.videos[video.ID]
	if !ok || existing.OwnerID != video.OwnerID {
		return repositories.ErrNotFound
	}
	existing.Title = video.Title
	existing.Description = video.Description
	existing.Thumbnail = video.Thumbnail
	existing.IsPublished = video.IsPublished
	existing.UpdatedAt = video.UpdatedAt
	r.s.videos[video.ID] = existing
	return nil
}

func (r *Videos) Delete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	existing, ok := r.s.videos[id]
	if !ok || existing.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	r.s.deleteVideo(id)
	return nil
}

func (r *Videos) IncrementViews(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	v, ok := r.s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	v.Views++
	r.s.videos[id] = v
	return nil
}

// Comments implements the comment repository.
type Comments struct{ s *Store }

func (r *Comments) Create(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if _, ok := r.s.videos[comment.VideoID]; !ok {
		return repositories.ErrNotFound
	}
	if _, ok := r.s.users[comment.OwnerID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.comments[comment.ID] = comment
	return nil
}

func (r *Comments) FindByID(_ context.Context, id string) (models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.Comment{}, err
	}
	c, ok := r.s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return c, nil
}

func (r *Comments) Update(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	existing, ok := r.s.comments[comment.ID]
	if !ok || existing.OwnerID != comment.OwnerID {
		return repositories.ErrNotFound
	}
	existing.Content = comment.Content
	existing.UpdatedAt = comment.UpdatedAt
	r.s.comments[comment.ID] = existing
	return nil
}

func (r *Comments) Delete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	existing, ok := r.s.comments[id]
	if !ok || existing.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	r.s.deleteComment(id)
	return nil
}

// Tweets implements the tweet repository.
type Tweets struct{ s *Store }

func (r *Tweets) Create(_ context.Context, tweet models.Tweet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if _, ok := r.s.users[tweet.OwnerID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.tweets[tweet.ID] = tweet
	return nil
}

func (r *Tweets) FindByID(_ context.Context, id string) (models.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.Tweet{}, err
	}
	t, ok := r.s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return t, nil
}

func (r *Tweets) Update(_ context.Context, tweet models.Tweet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	existing, ok := r.s.tweets[tweet.ID]
	if !ok || existing.OwnerID != tweet.OwnerID {
		return repositories.ErrNotFound
	}
	existing.Content = tweet.Content
	existing.UpdatedAt = tweet.UpdatedAt
	r.s.tweets[tweet.ID] = existing
	return nil
}

func (r *Tweets) Delete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	existing, ok := r.s.tweets[id]
	if !ok || existing.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(r.s.tweets, id)
	r.s.deleteLikes(models.TweetLike, id)
	return nil
}

// Playlists implements the playlist repository.
type Playlists struct{ s *Store }

func (r *Playlists) Create(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if _, ok := r.s.users[playlist.OwnerID]; !ok {
		return repositories.ErrNotFound
	}
	playlist.VideoIDs = nil
	r.s.playlists[playlist.ID] = playlist
	return nil
}

func (r *Playlists) FindByID(_ context.Context, id string) (models.Playlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return models.Playlist{}, err
	}
	return r.s.playlist(id)
}

// playlist returns the playlist with its member ids in added order.
func (s *Store) playlist(id string) (models.Playlist, error) {
	p, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	p.VideoIDs = make([]string, 0, len(s.members[id]))
	for _, m := range s.members[id] {
		p.VideoIDs = append(p.VideoIDs, m.videoID)
	}
	return p, nil
}

func (r *Playlists) Update(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	existing, ok := r.s.playlists[playlist.ID]
	if !ok || existing.OwnerID != playlist.OwnerID {
		return repositories.ErrNotFound
	}
	existing.Name = playlist.Name
	existing.Description = playlist.Description
	existing.UpdatedAt = playlist.UpdatedAt
	r.s.playlists[playlist.ID] = existing
	return nil
}

func (r *Playlists) Delete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	existing, ok := r.s.playlists[id]
	if !ok || existing.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(r.s.playlists, id)
	delete(r.s.members, id)
	return nil
}

func (r *Playlists) AddVideo(_ context.Context, playlistID, videoID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	p, ok := r.s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	if _, ok := r.s.videos[videoID]; !ok {
		return repositories.ErrNotFound
	}
	for _, m := range r.s.members[playlistID] {
		if m.videoID == videoID {
			return nil
		}
	}
	r.s.members[playlistID] = append(r.s.members[playlistID], member{videoID: videoID, addedAt: at})
	p.UpdatedAt = at
	r.s.playlists[playlistID] = p
	return nil
}

func (r *Playlists) RemoveVideo(_ context.Context, playlistID, videoID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	p, ok := r.s.playlists[playlistID]
	if !ok {
		return nil
	}
	kept := r.s.members[playlistID][:0]
	for _, m := range r.s.members[playlistID] {
		if m.videoID != videoID {
			kept = append(kept, m)
		}
	}
	r.s.members[playlistID] = kept
	p.UpdatedAt = at
	r.s.playlists[playlistID] = p
	return nil
}
