package handlers

import "net/http"

// DashboardHandler serves the signed in channel's own statistics.
type DashboardHandler struct {
	Views ViewBuilder
}

// Stats handles GET /dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Views.ChannelStats(r.Context(), callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stats, "channel stats fetched successfully")
}

// Videos handles GET /dashboard/videos. Drafts are included.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.Views.ChannelVideos(r.Context(), callerID(r), pageOf(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, videos, "channel videos fetched successfully")
}
