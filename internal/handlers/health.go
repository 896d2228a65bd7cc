package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vidstream/backend/internal/apperror"
)

const healthTimeout = 2 * time.Second

// HealthHandler responds with service health information.
type HealthHandler struct {
	// Database is optional; when set it must answer a ping.
	Database Pinger
}

type healthResponse struct {
	Status string `json:"status"`
}

// Handle implements GET /healthcheck.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.Database.Ping(ctx); err != nil {
			respondError(w, r, apperror.Unavailable(err))
			return
		}
	}
	respond(w, r, http.StatusOK, healthResponse{Status: "ok"}, "service is healthy")
}
