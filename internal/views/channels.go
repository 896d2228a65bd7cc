package views

import (
	"context"
	"strings"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/models"
)

// ChannelProfile returns the public page of the channel named username.
func (b *Builder) ChannelProfile(ctx context.Context, username, viewerID string) (ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return ChannelProfile{}, apperror.InvalidInput("username", "username is required")
	}
	rec, err := b.store.FindChannelByUsername(ctx, username)
	if err != nil {
		return ChannelProfile{}, apperror.FromStore(err, "channel", username)
	}
	u := rec.User
	return ChannelProfile{
		ID:                        u.ID,
		Username:                  u.Username,
		FullName:                  u.FullName,
		Email:                     u.Email,
		Avatar:                    u.Avatar.URL,
		CoverImage:                u.CoverImage.URL,
		SubscribersCount:          len(rec.SubscriberIDs),
		ChannelsSubscribedToCount: len(rec.SubscribedTo),
		IsSubscribed:              contains(rec.SubscriberIDs, viewerID),
	}, nil
}

// ChannelSubscribers lists the subscribers of a channel, most recent first.
func (b *Builder) ChannelSubscribers(ctx context.Context, channelID string, page Page, viewerID string) (Paged[SubscriberView], error) {
	if err := checkID("channelId", channelID); err != nil {
		return Paged[SubscriberView]{}, err
	}
	if _, err := b.store.FindChannel(ctx, channelID); err != nil {
		return Paged[SubscriberView]{}, apperror.FromStore(err, "channel", channelID)
	}
	page = page.normalised()
	subs, total, err := b.store.ListSubscribers(ctx, channelID, page.Offset(), page.Limit)
	if err != nil {
		return Paged[SubscriberView]{}, apperror.FromStore(err, "subscription", "")
	}
	ids := make([]string, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.SubscriberID)
	}
	channels, err := b.store.FindChannels(ctx, ids)
	if err != nil {
		return Paged[SubscriberView]{}, apperror.FromStore(err, "channel", "")
	}

	items := make([]SubscriberView, 0, len(subs))
	for _, s := range subs {
		rec, ok := channels[s.SubscriberID]
		if !ok {
			continue
		}
		items = append(items, SubscriberView{
			ID:               rec.User.ID,
			Username:         rec.User.Username,
			FullName:         rec.User.FullName,
			Avatar:           rec.User.Avatar.URL,
			SubscribersCount: len(rec.SubscriberIDs),
			// The channel subscribes back when it is among the subscriber's
			// own subscribers.
			SubscribedToChannel: contains(rec.SubscriberIDs, channelID),
			IsSubscribed:        contains(rec.SubscriberIDs, viewerID),
			SubscribedAt:        s.CreatedAt,
		})
	}
	return newPaged(items, total, page), nil
}

// SubscribedChannels lists the channels a user subscribes to together with
// each channel's latest published video.
func (b *Builder) SubscribedChannels(ctx context.Context, subscriberID string, page Page, viewerID string) (Paged[SubscribedChannelView], error) {
	if err := checkID("subscriberId", subscriberID); err != nil {
		return Paged[SubscribedChannelView]{}, err
	}
	if _, err := b.store.FindChannel(ctx, subscriberID); err != nil {
		return Paged[SubscribedChannelView]{}, apperror.FromStore(err, "user", subscriberID)
	}
	page = page.normalised()
	subs, total, err := b.store.ListSubscriptions(ctx, subscriberID, page.Offset(), page.Limit)
	if err != nil {
		return Paged[SubscribedChannelView]{}, apperror.FromStore(err, "subscription", "")
	}
	ids := make([]string, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ChannelID)
	}
	channels, err := b.store.FindChannels(ctx, ids)
	if err != nil {
		return Paged[SubscribedChannelView]{}, apperror.FromStore(err, "channel", "")
	}
	latest, err := b.store.LatestVideos(ctx, ids)
	if err != nil {
		return Paged[SubscribedChannelView]{}, apperror.FromStore(err, "video", "")
	}

	items := make([]SubscribedChannelView, 0, len(subs))
	for _, s := range subs {
		rec, ok := channels[s.ChannelID]
		if !ok {
			continue
		}
		item := SubscribedChannelView{
			ID:               rec.User.ID,
			Username:         rec.User.Username,
			FullName:         rec.User.FullName,
			Avatar:           rec.User.Avatar.URL,
			SubscribersCount: len(rec.SubscriberIDs),
			IsSubscribed:     contains(rec.SubscriberIDs, viewerID),
		}
		if v, ok := latest[s.ChannelID]; ok {
			summary := summarizeVideo(v)
			item.LatestVideo = &summary
		}
		items = append(items, item)
	}
	return newPaged(items, total, page), nil
}

// ChannelStats aggregates a channel's catalogue for its dashboard. Drafts
// count towards every total.
func (b *Builder) ChannelStats(ctx context.Context, channelID string) (ChannelStats, error) {
	if err := checkID("channelId", channelID); err != nil {
		return ChannelStats{}, err
	}
	rec, err := b.store.FindChannel(ctx, channelID)
	if err != nil {
		return ChannelStats{}, apperror.FromStore(err, "channel", channelID)
	}
	totals, err := b.store.ChannelTotals(ctx, channelID)
	if err != nil {
		return ChannelStats{}, apperror.FromStore(err, "channel", channelID)
	}
	return ChannelStats{
		TotalVideos:      totals.Videos,
		TotalViews:       totals.Views,
		TotalSubscribers: len(rec.SubscriberIDs),
		TotalLikes:       totals.Likes,
	}, nil
}

// ChannelVideos lists every video of the channel, drafts included, newest
// first.
func (b *Builder) ChannelVideos(ctx context.Context, channelID string, page Page) (Paged[DashboardVideo], error) {
	if err := checkID("channelId", channelID); err != nil {
		return Paged[DashboardVideo]{}, err
	}
	page = page.normalised()
	records, total, err := b.store.ListVideos(ctx, models.VideoQuery{
		OwnerID: channelID,
		SortBy:  models.SortByCreatedAt,
		Offset:  page.Offset(),
		Limit:   page.Limit,
	})
	if err != nil {
		return Paged[DashboardVideo]{}, apperror.FromStore(err, "video", "")
	}
	items := make([]DashboardVideo, 0, len(records))
	for _, rec := range records {
		v := rec.Video
		items = append(items, DashboardVideo{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			Thumbnail:   v.Thumbnail.URL,
			Views:       v.Views,
			IsPublished: v.IsPublished,
			LikesCount:  len(rec.LikedBy),
			CreatedAt:   v.CreatedAt,
		})
	}
	return newPaged(items, total, page), nil
}
