package handlers

import (
	"context"
	"net/http"

	"github.com/vidstream/backend/internal/accounts"
	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/auth"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/storage"
)

// UserHandler implements the /users endpoints.
type UserHandler struct {
	Accounts AccountService
	Views    ViewBuilder
	Cookies  auth.CookieWriter
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type imageUpdate func(ctx context.Context, userID string, upload storage.Upload) (models.User, error)

type sessionResponse struct {
	User *models.User `json:"user,omitempty"`
	models.SessionTokens
}

// Register handles POST /users/register (multipart with avatar and
// coverImage files).
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(r); err != nil {
		respondError(w, r, err)
		return
	}
	defer cleanupMultipart(r)

	avatar, err := formFile(r, "avatar")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer closeUpload(avatar)
	cover, err := formFile(r, "coverImage")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer closeUpload(cover)

	user, err := h.Accounts.Register(r.Context(), accounts.Registration{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("fullName"),
		Password: r.FormValue("password"),
		Avatar:   avatar,
		Cover:    cover,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, tokens, err := h.Accounts.Login(r.Context(), accounts.Credentials{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.Cookies.SetSession(w, tokens)
	respond(w, r, http.StatusOK, sessionResponse{User: &user, SessionTokens: tokens}, "user logged in successfully")
}

// Logout handles POST /users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Logout(r.Context(), callerID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	h.Cookies.Clear(w)
	respond(w, r, http.StatusOK, struct{}{}, "user logged out")
}

// Refresh handles POST /users/refresh-token. The refresh credential comes
// from its cookie or, failing that, from the JSON body.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := auth.RefreshTokenFromRequest(r)
	if token == "" && r.ContentLength != 0 {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		respondError(w, r, apperror.Unauthenticated("unauthorized request"))
		return
	}

	tokens, err := h.Accounts.Refresh(r.Context(), token)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.Cookies.SetSession(w, tokens)
	respond(w, r, http.StatusOK, sessionResponse{SessionTokens: tokens}, "access token refreshed")
}

// ChangePassword handles POST /users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Accounts.ChangePassword(r.Context(), callerID(r), req.OldPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, struct{}{}, "password changed successfully")
}

// CurrentUser handles GET /users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Accounts.CurrentUser(r.Context(), callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, user, "current user fetched successfully")
}

// UpdateAccount handles PATCH /users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.Accounts.UpdateAccount(r.Context(), callerID(r), req.FullName, req.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, user, "account details updated successfully")
}

// UpdateAvatar handles PATCH /users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.Accounts.UpdateAvatar, "avatar updated successfully")
}

// UpdateCover handles PATCH /users/cover-image.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.Accounts.UpdateCover, "cover image updated successfully")
}

func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdate, message string) {
	if err := parseMultipart(r); err != nil {
		respondError(w, r, err)
		return
	}
	defer cleanupMultipart(r)

	file, err := formFile(r, field)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if file == nil {
		respondError(w, r, apperror.InvalidInput(field, field+" file is required"))
		return
	}
	defer closeUpload(file)

	user, err := update(r.Context(), callerID(r), *file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, user, message)
}

// Channel handles GET /users/c/{username}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Views.ChannelProfile(r.Context(), param(r, "username"), callerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, profile, "channel fetched successfully")
}

// History handles GET /users/history.
func (h UserHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.Views.WatchHistory(r.Context(), callerID(r), pageOf(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, history, "watch history fetched successfully")
}
