package handlers

import "net/http"

// PlaylistHandler implements the /playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistService
	Views     ViewBuilder
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /playlist.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	playlist, err := h.Playlists.Create(r.Context(), callerID(r), req.Name, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, playlist, "playlist created successfully")
}

// Get handles GET /playlist/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.Views.PlaylistContents(r.Context(), param(r, "playlistId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, playlist, "playlist fetched successfully")
}

// Update handles PATCH /playlist/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	playlist, err := h.Playlists.Update(r.Context(), callerID(r), param(r, "playlistId"), req.Name, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /playlist/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Playlists.Delete(r.Context(), callerID(r), param(r, "playlistId")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, struct{}{}, "playlist deleted successfully")
}

// AddVideo handles PATCH /playlist/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.Playlists.AddVideo(r.Context(), callerID(r), param(r, "playlistId"), param(r, "videoId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, playlist, "video added to playlist")
}

// RemoveVideo handles PATCH /playlist/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.Playlists.RemoveVideo(r.Context(), callerID(r), param(r, "playlistId"), param(r, "videoId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, playlist, "video removed from playlist")
}

// ByUser handles GET /playlist/user/{userId}.
func (h PlaylistHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.Views.UserPlaylists(r.Context(), param(r, "userId"), pageOf(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, playlists, "playlists fetched successfully")
}
