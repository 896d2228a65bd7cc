package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vidstream/backend/internal/accounts"
	"github.com/vidstream/backend/internal/auth"
	"github.com/vidstream/backend/internal/config"
	"github.com/vidstream/backend/internal/db"
	"github.com/vidstream/backend/internal/engagement"
	"github.com/vidstream/backend/internal/handlers"
	"github.com/vidstream/backend/internal/metrics"
	"github.com/vidstream/backend/internal/playlists"
	"github.com/vidstream/backend/internal/relations"
	"github.com/vidstream/backend/internal/repositories"
	"github.com/vidstream/backend/internal/storage"
	"github.com/vidstream/backend/internal/videos"
	"github.com/vidstream/backend/internal/views"
)

// registry is what buildDependencies needs from a Prometheus registry.
type registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger, reg registry) (handlers.Dependencies, error) {
	recorder := metrics.NewCollector(reg)

	media, err := newMediaStore(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}
	media = storage.Instrument(media, recorder)

	timeout := repositories.WithTimeout(cfg.StoreTimeout)
	users := repositories.NewPostgresUserRepository(pool, timeout)
	videoRepo := repositories.NewPostgresVideoRepository(pool, timeout)

	manager, err := auth.NewManager(auth.TokenConfig{
		Issuer:        cfg.TokenIssuer,
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}, users, auth.WithMetrics(recorder))
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("token manager: %w", err)
	}

	engine := relations.NewEngine(repositories.NewPostgresRelationRepository(pool, timeout), recorder)

	return handlers.Dependencies{
		Accounts: accounts.NewService(users, manager, auth.NewPasswordHasher(cfg.BcryptCost), media),
		Videos:   videos.NewService(videoRepo, media),
		Engagement: engagement.NewService(
			repositories.NewPostgresCommentRepository(pool, timeout),
			repositories.NewPostgresTweetRepository(pool, timeout),
			videoRepo,
			engine,
		),
		Playlists: playlists.NewService(repositories.NewPostgresPlaylistRepository(pool, timeout), videoRepo),
		Views:     views.NewBuilder(repositories.NewPostgresReadRepository(pool, timeout)),
		Verifier:  manager,
		Cookies:   auth.CookieWriter{Secure: cfg.CookieSecure},
		Database:  pool,

		Logger:   logger,
		Metrics:  recorder,
		Gatherer: reg,

		CORSOrigin:     cfg.CORSOrigin,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, nil
}

func newMediaStore(ctx context.Context, cfg config.ObjectStoreConfig) (storage.MediaStore, error) {
	switch cfg.Backend {
	case config.MediaMemory:
		return storage.NewMemoryStore(cfg.PublicBaseURL), nil
	case config.MediaS3, "":
		store, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}
