package handlers

import (
	"context"
	"net/http"

	"github.com/vidstream/backend/internal/relations"
)

type contentRequest struct {
	Content string `json:"content"`
}

// CommentHandler implements the /comments endpoints.
type CommentHandler struct {
	Engagement EngagementService
	Views      ViewBuilder
}

// List handles GET /comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Views.VideoComments(r.Context(), param(r, "videoId"), pageOf(r), callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, comments, "comments fetched successfully")
}

// Add handles POST /comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	comment, err := h.Engagement.AddComment(r.Context(), callerID(r), param(r, "videoId"), req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, comment, "comment added successfully")
}

// Update handles PATCH /comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	comment, err := h.Engagement.UpdateComment(r.Context(), callerID(r), param(r, "commentId"), req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, comment, "comment updated successfully")
}

// Delete handles DELETE /comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Engagement.DeleteComment(r.Context(), callerID(r), param(r, "commentId")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, struct{}{}, "comment deleted successfully")
}

// TweetHandler implements the /tweets endpoints.
type TweetHandler struct {
	Engagement EngagementService
	Views      ViewBuilder
}

// Create handles POST /tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	tweet, err := h.Engagement.CreateTweet(r.Context(), callerID(r), req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, tweet, "tweet created successfully")
}

// ByUser handles GET /tweets/user/{userId}.
func (h TweetHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.Views.UserTweets(r.Context(), param(r, "userId"), pageOf(r), callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tweets, "tweets fetched successfully")
}

// Update handles PATCH /tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	tweet, err := h.Engagement.UpdateTweet(r.Context(), callerID(r), param(r, "tweetId"), req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete handles DELETE /tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Engagement.DeleteTweet(r.Context(), callerID(r), param(r, "tweetId")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, struct{}{}, "tweet deleted successfully")
}

// LikeHandler implements the /likes endpoints.
type LikeHandler struct {
	Engagement EngagementService
	Views      ViewBuilder
}

type toggleResponse struct {
	Liked bool `json:"liked"`
}

type toggleFunc func(ctx context.Context, callerID, targetID string) (relations.State, error)

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, fn toggleFunc, target string) {
	state, err := fn(r.Context(), callerID(r), param(r, target))
	if err != nil {
		respondError(w, r, err)
		return
	}
	message := "like removed"
	if state.Active {
		message = "like added"
	}
	respond(w, r, http.StatusOK, toggleResponse{Liked: state.Active}, message)
}

// ToggleVideo handles POST /likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Engagement.ToggleVideoLike, "videoId")
}

// ToggleComment handles POST /likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Engagement.ToggleCommentLike, "commentId")
}

// ToggleTweet handles POST /likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Engagement.ToggleTweetLike, "tweetId")
}

// Videos handles GET /likes/videos.
func (h LikeHandler) Videos(w http.ResponseWriter, r *http.Request) {
	liked, err := h.Views.LikedVideos(r.Context(), callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, liked, "liked videos fetched successfully")
}

// SubscriptionHandler implements the /subscriptions endpoints.
type SubscriptionHandler struct {
	Engagement EngagementService
	Views      ViewBuilder
}

type subscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
}

// Toggle handles POST /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	state, err := h.Engagement.ToggleSubscription(r.Context(), callerID(r), param(r, "channelId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	message := "unsubscribed successfully"
	if state.Active {
		message = "subscribed successfully"
	}
	respond(w, r, http.StatusOK, subscriptionResponse{Subscribed: state.Active}, message)
}

// Subscribers handles GET /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.Views.ChannelSubscribers(r.Context(), param(r, "channelId"), pageOf(r), callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, subscribers, "subscribers fetched successfully")
}

// Subscribed handles GET /subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	channels, err := h.Views.SubscribedChannels(r.Context(), param(r, "subscriberId"), pageOf(r), callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, channels, "subscribed channels fetched successfully")
}
