package accounts

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/auth"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/repositories/memory"
	"github.com/vidstream/backend/internal/storage"
)

type harness struct {
	service *Service
	store   *memory.Store
	media   *storage.MemoryStore
	manager *auth.Manager
}

func newHarness(t *testing.T) harness {
	t.Helper()
	store := memory.NewStore()
	manager, err := auth.NewManager(auth.TokenConfig{
		AccessSecret:  "access-secret-0123456789",
		RefreshSecret: "refresh-secret-0123456789",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, store.Users())
	require.NoError(t, err)
	media := storage.NewMemoryStore("https://cdn.test")
	return harness{
		service: NewService(store.Users(), manager, auth.NewPasswordHasher(4), media),
		store:   store,
		media:   media,
		manager: manager,
	}
}

func image(name string) *storage.Upload {
	return &storage.Upload{Filename: name, ContentType: "image/png", Content: strings.NewReader("png-bytes")}
}

func registration(username string) Registration {
	return Registration{
		Username: username,
		Email:    strings.ToLower(strings.TrimSpace(username)) + "@example.com",
		FullName: "Test " + username,
		Password: "correct horse",
		Avatar:   image("avatar.png"),
		Cover:    image("cover.png"),
	}
}

// failingNth fails the nth Store call and delegates the rest.
type failingNth struct {
	storage.MediaStore
	mu    sync.Mutex
	n     int
	calls int
}

func (f *failingNth) Store(ctx context.Context, name, contentType string, content io.Reader) (models.MediaAsset, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls == f.n
	f.mu.Unlock()
	if fail {
		return models.MediaAsset{}, errors.New("bucket offline")
	}
	return f.MediaStore.Store(ctx, name, contentType, content)
}

func TestRegisterLoginAndCurrentUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user, err := h.service.Register(ctx, registration("  Alice "))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Password, "hash must not leak")
	assert.True(t, h.media.Has(user.Avatar.StorageID))
	assert.True(t, h.media.Has(user.CoverImage.StorageID))

	loggedIn, tokens, err := h.service.Login(ctx, Credentials{Email: "ALICE@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	subject, err := h.manager.VerifyAccess(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	current, err := h.service.CurrentUser(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, "Test   Alice", current.FullName)
	assert.Empty(t, current.Password)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.Register(ctx, registration("alice"))
	require.NoError(t, err)

	dup := registration("ALICE")
	dup.Email = "other@example.com"
	_, err = h.service.Register(ctx, dup)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, 2, h.media.Len(), "no media stored for the rejected registration")
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Registration)
		field  string
	}{
		{"missing full name", func(r *Registration) { r.FullName = " " }, "fullName"},
		{"missing email", func(r *Registration) { r.Email = "" }, "email"},
		{"bad email", func(r *Registration) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *Registration) { r.Password = "short" }, "password"},
		{"spaces in username", func(r *Registration) { r.Username = "a b" }, "username"},
		{"missing avatar", func(r *Registration) { r.Avatar = nil }, "avatar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registration("bob")
			tt.mutate(&in)
			_, err := h.service.Register(ctx, in)
			require.ErrorIs(t, err, apperror.ErrInvalidInput)
			assert.Equal(t, tt.field, apperror.FieldOf(err))
		})
	}
}

func TestRegisterAvatarUploadFailurePersistsNothing(t *testing.T) {
	h := newHarness(t)
	h.media.FailStoreWith(errors.New("bucket offline"))

	_, err := h.service.Register(context.Background(), registration("carol"))
	assert.ErrorIs(t, err, apperror.ErrUpload)

	_, err = h.store.Users().FindByUsername(context.Background(), "carol")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRegisterContinuesWithoutCover(t *testing.T) {
	h := newHarness(t)
	flaky := &failingNth{MediaStore: h.media, n: 2}
	service := NewService(h.store.Users(), h.manager, auth.NewPasswordHasher(4), flaky)

	user, err := service.Register(context.Background(), registration("dave"))
	require.NoError(t, err)
	assert.NotEmpty(t, user.Avatar.URL)
	assert.Zero(t, user.CoverImage)
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.service.Register(ctx, registration("erin"))
	require.NoError(t, err)

	_, _, err = h.service.Login(ctx, Credentials{Username: "erin", Password: "wrong password"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, _, err = h.service.Login(ctx, Credentials{Username: "nobody", Password: "correct horse"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, _, err = h.service.Login(ctx, Credentials{Password: "correct horse"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestSecondLoginInvalidatesFirstRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.service.Register(ctx, registration("frank"))
	require.NoError(t, err)

	creds := Credentials{Username: "frank", Password: "correct horse"}
	_, first, err := h.service.Login(ctx, creds)
	require.NoError(t, err)
	_, second, err := h.service.Login(ctx, creds)
	require.NoError(t, err)

	_, err = h.service.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrRevokedOrStale)

	rotated, err := h.service.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, second.RefreshToken, rotated.RefreshToken)
}

func TestLogoutRevokesRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user, err := h.service.Register(ctx, registration("grace"))
	require.NoError(t, err)
	_, tokens, err := h.service.Login(ctx, Credentials{Username: "grace", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, h.service.Logout(ctx, user.ID))
	_, err = h.service.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrRevokedOrStale)
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user, err := h.service.Register(ctx, registration("heidi"))
	require.NoError(t, err)

	err = h.service.ChangePassword(ctx, user.ID, "wrong password", "brand new secret")
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, "oldPassword", apperror.FieldOf(err))

	require.NoError(t, h.service.ChangePassword(ctx, user.ID, "correct horse", "brand new secret"))
	_, _, err = h.service.Login(ctx, Credentials{Username: "heidi", Password: "brand new secret"})
	assert.NoError(t, err)
	_, _, err = h.service.Login(ctx, Credentials{Username: "heidi", Password: "correct horse"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestUpdateAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ivan, err := h.service.Register(ctx, registration("ivan"))
	require.NoError(t, err)
	_, err = h.service.Register(ctx, registration("judy"))
	require.NoError(t, err)

	_, err = h.service.UpdateAccount(ctx, ivan.ID, "Ivan", "judy@example.com")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	updated, err := h.service.UpdateAccount(ctx, ivan.ID, " Ivan I. ", "IVAN.NEW@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ivan I.", updated.FullName)
	assert.Equal(t, "ivan.new@example.com", updated.Email)

	_, err = h.service.UpdateAccount(ctx, ivan.ID, "", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestUpdateAvatarReplacesPreviousFile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user, err := h.service.Register(ctx, registration("mallory"))
	require.NoError(t, err)
	old := user.Avatar

	updated, err := h.service.UpdateAvatar(ctx, user.ID, *image("new.png"))
	require.NoError(t, err)
	assert.NotEqual(t, old.StorageID, updated.Avatar.StorageID)
	assert.True(t, h.media.Has(updated.Avatar.StorageID))
	assert.False(t, h.media.Has(old.StorageID), "previous avatar removed")

	h.media.FailRemoveWith(errors.New("bucket offline"))
	again, err := h.service.UpdateCover(ctx, user.ID, *image("cover-2.png"))
	require.NoError(t, err, "failing to delete the old cover is not fatal")
	assert.True(t, h.media.Has(again.CoverImage.StorageID))

	h.media.FailStoreWith(errors.New("bucket offline"))
	_, err = h.service.UpdateAvatar(ctx, user.ID, *image("third.png"))
	assert.ErrorIs(t, err, apperror.ErrUpload)
}
