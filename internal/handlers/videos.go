package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/videos"
	"github.com/vidstream/backend/internal/views"
)

// VideoHandler implements the /videos endpoints.
type VideoHandler struct {
	Videos VideoService
	Views  ViewBuilder
}

type videoChangesRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Feed handles GET /videos. Supported query parameters are page, limit,
// query, sortBy, sortType and userId.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	h.feed(w, r, r.URL.Query().Get("userId"))
}

// ByUser handles GET /videos/user/{userId}.
func (h VideoHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	h.feed(w, r, param(r, "userId"))
}

func (h VideoHandler) feed(w http.ResponseWriter, r *http.Request, ownerID string) {
	q := r.URL.Query()
	feed, err := h.Views.VideoFeed(r.Context(), views.FeedQuery{
		OwnerID:  ownerID,
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		Page:     pageOf(r),
	}, callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, feed, "videos fetched successfully")
}

// Publish handles POST /videos (multipart with videoFile and thumbnail).
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(r); err != nil {
		respondError(w, r, err)
		return
	}
	defer cleanupMultipart(r)

	draft := videos.Draft{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		duration, err := strconv.ParseFloat(raw, 64)
		if err != nil || duration < 0 {
			respondError(w, r, apperror.InvalidInput("duration", "duration must be a non-negative number of seconds"))
			return
		}
		draft.Duration = duration
	}

	var err error
	if draft.VideoFile, err = formFile(r, "videoFile"); err != nil {
		respondError(w, r, err)
		return
	}
	defer closeUpload(draft.VideoFile)
	if draft.Thumbnail, err = formFile(r, "thumbnail"); err != nil {
		respondError(w, r, err)
		return
	}
	defer closeUpload(draft.Thumbnail)

	video, err := h.Videos.Publish(r.Context(), callerID(r), draft)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, video, "video published successfully")
}

// Get handles GET /videos/{videoId}. Viewing counts a view and, for a signed
// in viewer, appends to the watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Views.VideoDetail(r.Context(), param(r, "videoId"), callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, detail, "video fetched successfully")
}

// Update handles PATCH /videos/{videoId}. It accepts either a multipart form
// carrying an optional thumbnail or a JSON body.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var changes videos.Changes
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := parseMultipart(r); err != nil {
			respondError(w, r, err)
			return
		}
		defer cleanupMultipart(r)

		changes.Title = r.FormValue("title")
		changes.Description = r.FormValue("description")
		thumbnail, err := formFile(r, "thumbnail")
		if err != nil {
			respondError(w, r, err)
			return
		}
		defer closeUpload(thumbnail)
		changes.Thumbnail = thumbnail
	} else {
		var req videoChangesRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		changes.Title, changes.Description = req.Title, req.Description
	}

	video, err := h.Videos.Update(r.Context(), callerID(r), param(r, "videoId"), changes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, video, "video updated successfully")
}

// Delete handles DELETE /videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Videos.Delete(r.Context(), callerID(r), param(r, "videoId")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, struct{}{}, "video deleted successfully")
}

// TogglePublish handles PATCH /videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	video, err := h.Videos.TogglePublish(r.Context(), callerID(r), param(r, "videoId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, video, "publish status toggled successfully")
}
