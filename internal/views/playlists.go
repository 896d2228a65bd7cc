package views

import (
	"context"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/models"
)

// PlaylistContents returns a playlist with its published member videos in
// the order they were added.
func (b *Builder) PlaylistContents(ctx context.Context, playlistID string) (PlaylistView, error) {
	if err := checkID("playlistId", playlistID); err != nil {
		return PlaylistView{}, err
	}
	p, err := b.store.FindPlaylist(ctx, playlistID)
	if err != nil {
		return PlaylistView{}, apperror.FromStore(err, "playlist", playlistID)
	}
	videos, err := b.store.VideosByIDs(ctx, p.VideoIDs)
	if err != nil {
		return PlaylistView{}, apperror.FromStore(err, "video", "")
	}
	owners, err := b.store.UsersByIDs(ctx, []string{p.OwnerID})
	if err != nil {
		return PlaylistView{}, apperror.FromStore(err, "user", p.OwnerID)
	}

	view := PlaylistView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Owner:       summarize(owners[p.OwnerID]),
		Videos:      []VideoSummary{},
	}
	for _, v := range published(p.VideoIDs, videos) {
		view.Videos = append(view.Videos, summarizeVideo(v))
		view.TotalViews += v.Views
	}
	view.TotalVideos = len(view.Videos)
	return view, nil
}

// UserPlaylists lists a user's playlists, most recently changed first.
func (b *Builder) UserPlaylists(ctx context.Context, userID string, page Page) (Paged[PlaylistSummary], error) {
	if err := checkID("userId", userID); err != nil {
		return Paged[PlaylistSummary]{}, err
	}
	page = page.normalised()
	playlists, total, err := b.store.ListPlaylists(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return Paged[PlaylistSummary]{}, apperror.FromStore(err, "playlist", "")
	}
	var ids []string
	for _, p := range playlists {
		ids = append(ids, p.VideoIDs...)
	}
	videos, err := b.store.VideosByIDs(ctx, ids)
	if err != nil {
		return Paged[PlaylistSummary]{}, apperror.FromStore(err, "video", "")
	}

	items := make([]PlaylistSummary, 0, len(playlists))
	for _, p := range playlists {
		item := PlaylistSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			UpdatedAt:   p.UpdatedAt,
		}
		members := published(p.VideoIDs, videos)
		item.TotalVideos = len(members)
		for _, v := range members {
			item.TotalViews += v.Views
		}
		items = append(items, item)
	}
	return newPaged(items, total, page), nil
}

// published resolves ids in order, dropping missing and unpublished videos.
func published(ids []string, videos map[string]models.Video) []models.Video {
	out := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := videos[id]; ok && v.IsPublished {
			out = append(out, v)
		}
	}
	return out
}
