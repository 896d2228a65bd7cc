// Package accounts implements registration, sign-in and profile management.
package accounts

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/auth"
	"github.com/vidstream/backend/internal/logging"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/storage"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

// Sessions issues, rotates and revokes credentials.
type Sessions interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Rotate(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
}

// Service manages user accounts.
type Service struct {
	users    repositories.UserRepository
	sessions Sessions
	hasher   auth.PasswordHasher
	media    storage.MediaStore
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs an account service.
func NewService(users repositories.UserRepository, sessions Sessions, hasher auth.PasswordHasher, media storage.MediaStore, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		media:    media,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registration carries the sign-up form. Avatar is required, Cover is not.
type Registration struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   *storage.Upload
	Cover    *storage.Upload
}

// Register creates an account. Nothing is persisted when the avatar cannot
// be stored.
func (s *Service) Register(ctx context.Context, in Registration) (_ models.User, err error) {
	ctx, span := logging.StartSpan(ctx, "accounts.register")
	defer func() {
		span.Fail(err)
		span.End()
	}()
	logger := logging.FromContext(ctx)

	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	for _, f := range []struct{ name, value string }{
		{"fullName", in.FullName},
		{"email", in.Email},
		{"username", in.Username},
		{"password", in.Password},
	} {
		if f.value == "" {
			return models.User{}, apperror.InvalidInput(f.name, f.name+" is required")
		}
	}
	if strings.ContainsAny(in.Username, " \t\r\n/") {
		return models.User{}, apperror.InvalidInput("username", "username must not contain spaces or slashes")
	}
	if err := validateEmail(in.Email); err != nil {
		return models.User{}, err
	}
	if err := validatePassword("password", in.Password); err != nil {
		return models.User{}, err
	}
	if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return models.User{}, err
	}
	if in.Avatar == nil || in.Avatar.Content == nil {
		return models.User{}, apperror.InvalidInput("avatar", "avatar file is required")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, err
	}

	avatar, err := s.media.Store(ctx, in.Avatar.Filename, in.Avatar.ContentType, in.Avatar.Content)
	if err != nil {
		return models.User{}, apperror.UploadFailed("avatar", err)
	}
	var cover models.MediaAsset
	if in.Cover != nil && in.Cover.Content != nil {
		cover, err = s.media.Store(ctx, in.Cover.Filename, in.Cover.ContentType, in.Cover.Content)
		if err != nil {
			logger.Warn("cover image upload failed, continuing without one", "error", err)
			cover = models.MediaAsset{}
		}
	}

	now := s.now()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   in.Username,
		Email:      in.Email,
		FullName:   in.FullName,
		Password:   hash,
		Avatar:     avatar,
		CoverImage: cover,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		storage.RemoveQuietly(ctx, s.media, avatar, "avatar")
		storage.RemoveQuietly(ctx, s.media, cover, "coverImage")
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, apperror.Conflict("user with email or username already exists")
		}
		return models.User{}, apperror.FromStore(err, "user", user.ID)
	}

	logger.Info("user registered", "userId", user.ID)
	user.Password = ""
	return user, nil
}

func (s *Service) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.FindByUsername(ctx, username); !errors.Is(err, repositories.ErrNotFound) {
		return taken(err)
	}
	if _, err := s.users.FindByEmail(ctx, email); !errors.Is(err, repositories.ErrNotFound) {
		return taken(err)
	}
	return nil
}

// taken interprets a lookup that did not report ErrNotFound.
func taken(err error) error {
	if err == nil {
		return apperror.Conflict("user with email or username already exists")
	}
	return apperror.FromStore(err, "user", "")
}

// Credentials identifies a user by username or email.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// Login verifies credentials and starts a session, invalidating any
// previous refresh credential of the user.
func (s *Service) Login(ctx context.Context, in Credentials) (models.User, models.SessionTokens, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" && email == "" {
		return models.User{}, models.SessionTokens{}, apperror.InvalidInput("username", "username or email is required")
	}
	if in.Password == "" {
		return models.User{}, models.SessionTokens{}, apperror.InvalidInput("password", "password is required")
	}

	var (
		user models.User
		err  error
	)
	if username != "" {
		user, err = s.users.FindByUsername(ctx, username)
	} else {
		user, err = s.users.FindByEmail(ctx, email)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, models.SessionTokens{}, apperror.NotFound("user", "")
	}
	if err != nil {
		return models.User{}, models.SessionTokens{}, apperror.FromStore(err, "user", "")
	}

	ok, err := s.hasher.Matches(user.Password, in.Password)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}
	if !ok {
		logging.FromContext(ctx).Warn("login password mismatch", "userId", user.ID)
		return models.User{}, models.SessionTokens{}, apperror.Unauthenticated("invalid user credentials")
	}

	tokens, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}
	user.Password = ""
	return user, tokens, nil
}

// Logout revokes the user's refresh credential.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.sessions.Revoke(ctx, userID)
}

// Refresh rotates a refresh credential.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	return s.sessions.Rotate(ctx, refreshToken)
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" {
		return apperror.InvalidInput("oldPassword", "oldPassword is required")
	}
	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Matches(user.Password, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.InvalidInput("oldPassword", "invalid old password")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return apperror.FromStore(err, "user", userID)
	}
	return nil
}

// CurrentUser returns the signed-in user.
func (s *Service) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

// UpdateAccount changes the full name and email of the user.
func (s *Service) UpdateAccount(ctx context.Context, userID, fullName, email string) (models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return models.User{}, apperror.InvalidInput("fullName", "fullName and email are required")
	}
	if err := validateEmail(email); err != nil {
		return models.User{}, err
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	other, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && other.ID != user.ID:
		return models.User{}, apperror.Conflict("email is already in use")
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return models.User{}, apperror.FromStore(err, "user", "")
	}

	user.FullName = fullName
	user.Email = email
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, apperror.Conflict("email is already in use")
		}
		return models.User{}, apperror.FromStore(err, "user", userID)
	}
	user.Password = ""
	return user, nil
}

// UpdateAvatar replaces the user's avatar.
func (s *Service) UpdateAvatar(ctx context.Context, userID string, upload storage.Upload) (models.User, error) {
	return s.replaceImage(ctx, userID, upload, "avatar", func(u *models.User) *models.MediaAsset { return &u.Avatar })
}

// UpdateCover replaces the user's cover image.
func (s *Service) UpdateCover(ctx context.Context, userID string, upload storage.Upload) (models.User, error) {
	return s.replaceImage(ctx, userID, upload, "coverImage", func(u *models.User) *models.MediaAsset { return &u.CoverImage })
}

// replaceImage stores the new file, points the user at it and then removes
// the previous file. Failing to remove the previous file is only logged.
func (s *Service) replaceImage(ctx context.Context, userID string, upload storage.Upload, field string, slot func(*models.User) *models.MediaAsset) (models.User, error) {
	if upload.Content == nil {
		return models.User{}, apperror.InvalidInput(field, field+" file is missing")
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	asset, err := s.media.Store(ctx, upload.Filename, upload.ContentType, upload.Content)
	if err != nil {
		return models.User{}, apperror.UploadFailed(field, err)
	}
	previous := *slot(&user)
	*slot(&user) = asset
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		storage.RemoveQuietly(ctx, s.media, asset, field)
		return models.User{}, apperror.FromStore(err, "user", userID)
	}

	storage.RemoveQuietly(ctx, s.media, previous, field)
	user.Password = ""
	return user, nil
}

func (s *Service) user(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, apperror.Unauthenticated("sign in to continue")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, apperror.FromStore(err, "user", userID)
	}
	return user, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperror.InvalidInput("email", "invalid email address")
	}
	return nil
}

func validatePassword(field, password string) error {
	if len(password) < minPasswordLength {
		return apperror.InvalidInput(field, "password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return apperror.InvalidInput(field, "password must be at most 72 bytes")
	}
	return nil
}
