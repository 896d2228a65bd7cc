package memory

import (
	"context"
	"time"

	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
)

// Relations implements the relation store over likes and subscriptions.
type Relations struct{ s *Store }

func (r *Relations) FindRelation(_ context.Context, key models.RelationKey) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.err(); err != nil {
		return "", err
	}
	if id, ok := r.s.findRelation(key); ok {
		return id, nil
	}
	return "", repositories.ErrNotFound
}

func (s *Store) findRelation(key models.RelationKey) (string, bool) {
	if key.Kind == models.SubscriptionRelation {
		for id, sub := range s.subs {
			if sub.SubscriberID == key.ActorID && sub.ChannelID == key.ObjectID {
				return id, true
			}
		}
		return "", false
	}
	for id, l := range s.likes {
		if l.Kind == key.Kind && l.LikedBy == key.ActorID && l.TargetID == key.ObjectID {
			return id, true
		}
	}
	return "", false
}

func (s *Store) targetExists(key models.RelationKey) bool {
	var ok bool
	switch key.Kind {
	case models.VideoLike:
		_, ok = s.videos[key.ObjectID]
	case models.CommentLike:
		_, ok = s.comments[key.ObjectID]
	case models.TweetLike:
		_, ok = s.tweets[key.ObjectID]
	case models.SubscriptionRelation:
		_, ok = s.users[key.ObjectID]
	}
	return ok
}

func (r *Relations) CreateRelation(_ context.Context, key models.RelationKey, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if _, ok := r.s.users[key.ActorID]; !ok || !r.s.targetExists(key) {
		return repositories.ErrNotFound
	}
	if _, exists := r.s.findRelation(key); exists {
		return repositories.ErrConflict
	}
	if key.Kind == models.SubscriptionRelation {
		r.s.subs[id] = models.Subscription{ID: id, SubscriberID: key.ActorID, ChannelID: key.ObjectID, CreatedAt: at}
		return nil
	}
	r.s.likes[id] = models.Like{ID: id, LikedBy: key.ActorID, Kind: key.Kind, TargetID: key.ObjectID, CreatedAt: at}
	return nil
}

func (r *Relations) DeleteRelation(_ context.Context, key models.RelationKey, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.err(); err != nil {
		return err
	}
	if key.Kind == models.SubscriptionRelation {
		if _, ok := r.s.subs[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(r.s.subs, id)
		return nil
	}
	if _, ok := r.s.likes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.likes, id)
	return nil
}
