package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/logging"
	"github.com/vidstream/backend/internal/metrics"
	"github.com/vidstream/backend/internal/models"
	"github.com/vidstream/backend/internal/repositories"
)

// MinSecretLength is the shortest signing secret NewManager accepts.
const MinSecretLength = 16

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// CredentialStore persists the single active refresh credential of each user.
// LoadRefreshToken returns "" when no credential is stored and
// repositories.ErrNotFound when the user does not exist.
type CredentialStore interface {
	StoreRefreshToken(ctx context.Context, userID, token string) error
	LoadRefreshToken(ctx context.Context, userID string) (string, error)
	SwapRefreshToken(ctx context.Context, userID, current, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, userID string) error
}

// TokenConfig holds the signing material and lifetimes of both credentials.
type TokenConfig struct {
	Issuer        string
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Validate checks the secrets and lifetimes.
func (c TokenConfig) Validate() error {
	if len(c.AccessSecret) < MinSecretLength || len(c.RefreshSecret) < MinSecretLength {
		return fmt.Errorf("token secrets must be at least %d bytes", MinSecretLength)
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("access and refresh secrets must differ")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

type claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Manager issues, verifies, rotates and revokes session credentials. The
// access credential is a self-contained JWT; the refresh credential is a JWT
// whose exact string is also stored against the user so it can be revoked
// and rotated at most once.
type Manager struct {
	cfg     TokenConfig
	store   CredentialStore
	metrics metrics.Recorder
	now     func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock replaces the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithMetrics records credential events on r.
func WithMetrics(r metrics.Recorder) Option {
	return func(m *Manager) {
		m.metrics = metrics.OrDiscard(r)
	}
}

// NewManager constructs a Manager backed by store.
func NewManager(cfg TokenConfig, store CredentialStore, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("auth: credential store must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "vidstream"
	}

	m := &Manager{
		cfg:     cfg,
		store:   store,
		metrics: metrics.Discard{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue creates a new pair of credentials for userID and makes the refresh
// credential the only valid one for that user.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if strings.TrimSpace(userID) == "" {
		return models.SessionTokens{}, apperror.InvalidInput("userId", "user id must be provided")
	}

	tokens, err := m.mint(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.store.StoreRefreshToken(ctx, userID, tokens.RefreshToken); err != nil {
		m.metrics.RecordTokenEvent("issue", "store_error")
		return models.SessionTokens{}, apperror.FromStore(err, "user", userID)
	}

	m.metrics.RecordTokenEvent("issue", "ok")
	return tokens, nil
}

// VerifyAccess validates an access credential and returns its user id.
func (m *Manager) VerifyAccess(token string) (string, error) {
	c, err := m.parse(token, kindAccess, m.cfg.AccessSecret)
	if err != nil {
		return "", apperror.Unauthenticated("invalid access token")
	}
	return c.Subject, nil
}

// Rotate exchanges a refresh credential for a new pair. A given refresh
// credential rotates successfully at most once.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		m.metrics.RecordTokenEvent("rotate", "missing")
		return models.SessionTokens{}, apperror.Unauthenticated("refresh token is required")
	}

	c, err := m.parse(refreshToken, kindRefresh, m.cfg.RefreshSecret)
	if err != nil {
		m.metrics.RecordTokenEvent("rotate", "invalid")
		logging.FromContext(ctx).Debug("refresh token rejected", slog.Any("error", err))
		return models.SessionTokens{}, apperror.Unauthenticated("invalid refresh token")
	}
	userID := c.Subject

	stored, err := m.store.LoadRefreshToken(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		m.metrics.RecordTokenEvent("rotate", "unknown_user")
		return models.SessionTokens{}, apperror.Unauthenticated("invalid refresh token")
	}
	if err != nil {
		return models.SessionTokens{}, apperror.FromStore(err, "user", userID)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		m.metrics.RecordTokenEvent("rotate", "stale")
		return models.SessionTokens{}, apperror.RevokedOrStale("refresh token is expired or used")
	}

	tokens, err := m.mint(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	swapped, err := m.store.SwapRefreshToken(ctx, userID, refreshToken, tokens.RefreshToken)
	if err != nil {
		return models.SessionTokens{}, apperror.FromStore(err, "user", userID)
	}
	if !swapped {
		m.metrics.RecordTokenEvent("rotate", "stale")
		return models.SessionTokens{}, apperror.RevokedOrStale("refresh token is expired or used")
	}

	m.metrics.RecordTokenEvent("rotate", "ok")
	return tokens, nil
}

// Revoke clears the stored refresh credential of userID. Existing access
// credentials stay valid until they expire.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if err := m.store.ClearRefreshToken(ctx, userID); err != nil {
		return apperror.FromStore(err, "user", userID)
	}
	m.metrics.RecordTokenEvent("revoke", "ok")
	return nil
}

func (m *Manager) mint(userID string) (models.SessionTokens, error) {
	now := m.now()

	access, accessExp, err := m.sign(userID, kindAccess, m.cfg.AccessSecret, now, m.cfg.AccessTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}
	refresh, refreshExp, err := m.sign(userID, kindRefresh, m.cfg.RefreshSecret, now, m.cfg.RefreshTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) sign(userID, kind, secret string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expires := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expires, nil
}

func (m *Manager) parse(token, kind, secret string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if c.Kind != kind {
		return nil, fmt.Errorf("expected %s token, got %q", kind, c.Kind)
	}
	if c.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return c, nil
}
