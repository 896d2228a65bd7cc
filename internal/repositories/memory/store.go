// Package memory provides in-process implementations of the repository
// contracts. It mirrors the Postgres constraints (uniqueness, foreign keys,
// owner predicates and cascades) so services can be exercised without a
// database.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
)

type member struct {
	videoID string
	addedAt time.Time
}

type watch struct {
	seq   int
	entry models.WatchEntry
}

// Store holds every table in memory.
type Store struct {
	mu sync.RWMutex

	users     map[string]models.User
	refresh   map[string]*string
	videos    map[string]models.Video
	comments  map[string]models.Comment
	tweets    map[string]models.Tweet
	playlists map[string]models.Playlist
	members   map[string][]member
	likes     map[string]models.Like
	subs      map[string]models.Subscription
	history   []watch
	seq       int

	failure error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]models.User),
		refresh:   make(map[string]*string),
		videos:    make(map[string]models.Video),
		comments:  make(map[string]models.Comment),
		tweets:    make(map[string]models.Tweet),
		playlists: make(map[string]models.Playlist),
		members:   make(map[string][]member),
		likes:     make(map[string]models.Like),
		subs:      make(map[string]models.Subscription),
	}
}

// FailWith makes every subsequent call return err until cleared with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

func (s *Store) err() error {
	return s.failure
}

// Users exposes the user, credential and watch history tables.
func (s *Store) Users() *Users { return &Users{s: s} }

// Videos exposes the video table.
func (s *Store) Videos() *Videos { return &Videos{s: s} }

// Comments exposes the comment table.
func (s *Store) Comments() *Comments { return &Comments{s: s} }

// Tweets exposes the tweet table.
func (s *Store) Tweets() *Tweets { return &Tweets{s: s} }

// Playlists exposes playlists and their membership.
func (s *Store) Playlists() *Playlists { return &Playlists{s: s} }

// Relations exposes likes and subscriptions.
func (s *Store) Relations() *Relations { return &Relations{s: s} }

// Reads exposes the joined read records used by the aggregation views.
func (s *Store) Reads() *Reads { return &Reads{s: s} }

// WatchEntries returns the raw history of a user in insertion order.
func (s *Store) WatchEntries(userID string) []models.WatchEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.WatchEntry
	for _, w := range s.history {
		if w.entry.UserID == userID {
			out = append(out, w.entry)
		}
	}
	return out
}

// likers returns the ids of users who liked the target, in like order.
func (s *Store) likers(kind models.RelationKind, targetID string) []string {
	var likes []models.Like
	for _, l := range s.likes {
		if l.Kind == kind && l.TargetID == targetID {
			likes = append(likes, l)
		}
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].CreatedAt.Before(likes[j].CreatedAt) })

	out := make([]string, 0, len(likes))
	for _, l := range likes {
		out = append(out, l.LikedBy)
	}
	return out
}

func (s *Store) deleteLikes(kind models.RelationKind, targetID string) {
	for id, l := range s.likes {
		if l.Kind == kind && l.TargetID == targetID {
			delete(s.likes, id)
		}
	}
}

// deleteVideo removes a video and everything that references it.
func (s *Store) deleteVideo(id string) {
	delete(s.videos, id)
	s.deleteLikes(models.VideoLike, id)
	for cid, c := range s.comments {
		if c.VideoID == id {
			s.deleteComment(cid)
		}
	}
	for pid, ms := range s.members {
		kept := ms[:0]
		for _, m := range ms {
			if m.videoID != id {
				kept = append(kept, m)
			}
		}
		s.members[pid] = kept
	}
	kept := s.history[:0]
	for _, w := range s.history {
		if w.entry.VideoID != id {
			kept = append(kept, w)
		}
	}
	s.history = kept
}

func (s *Store) deleteComment(id string) {
	delete(s.comments, id)
	s.deleteLikes(models.CommentLike, id)
}

func (s *Store) usernameOrEmailTaken(user models.User) bool {
	for _, u := range s.users {
		if u.ID == user.ID {
			continue
		}
		if u.Username == user.Username || u.Email == user.Email {
			return true
		}
	}
	return false
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]T{}, items[offset:end]...)
}

// newerFirst orders by timestamp then id, both descending.
func newerFirst(at1, at2 time.Time, id1, id2 string) bool {
	if !at1.Equal(at2) {
		return at1.After(at2)
	}
	return id1 > id2
}

var _ repositories.UserRepository = (*Users)(nil)
var _ repositories.VideoRepository = (*Videos)(nil)
var _ repositories.CommentRepository = (*Comments)(nil)
var _ repositories.TweetRepository = (*Tweets)(nil)
var _ repositories.PlaylistRepository = (*Playlists)(nil)
