package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/auth"
	"github.com/vidstream/backend/internal/logging"
	"github.com/vidstream/backend/internal/storage"
	"github.com/vidstream/backend/internal/views"
)

// multipartMemory is how much of a multipart body is held in memory before
// parts spill to temporary files.
const multipartMemory = 32 << 20

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type errorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Success    bool   `json:"success"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	respondJSON(r.Context(), w, status, envelope{StatusCode: status, Data: data, Message: message, Success: true})
}

// respondError renders err with the public part of its message. The full
// error, including any store cause, only reaches the log.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	message := apperror.PublicMessage(err)

	logger := logging.FromContext(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "error", err)
	default:
		logger.Warn("request returned client error", "status", status, "error", err)
	}

	respondJSON(r.Context(), w, status, errorEnvelope{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
		Field:      apperror.FieldOf(err),
		Success:    false,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.InvalidInput("body", "request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apperror.InvalidInput("body", "request body is required")
		}
		return apperror.InvalidInput("body", "invalid request body")
	}
	return nil
}

func parseMultipart(r *http.Request) error {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.InvalidInput("body", "upload too large")
		}
		return apperror.InvalidInput("body", "expected a multipart form")
	}
	return nil
}

// cleanupMultipart drops any temporary files left by parseMultipart.
func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// formFile returns the named upload, or nil when the part is absent.
func formFile(r *http.Request, field string) (*storage.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.InvalidInput(field, "unreadable file")
	}
	return upload(file, header), nil
}

func upload(file multipart.File, header *multipart.FileHeader) *storage.Upload {
	return &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
}

func closeUpload(u *storage.Upload) {
	if u == nil {
		return
	}
	if c, ok := u.Content.(io.Closer); ok {
		_ = c.Close()
	}
}

func callerID(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

func param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

func pageOf(r *http.Request) views.Page {
	q := r.URL.Query()
	return views.ParsePage(q.Get("page"), q.Get("limit"))
}
