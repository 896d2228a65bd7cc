package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/auth"
	"github.com/vidstream/backend/internal/metrics"
	"github.com/vidstream/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts   AccountService
	Videos     VideoService
	Engagement EngagementService
	Playlists  PlaylistService
	Views      ViewBuilder
	Verifier   auth.AccessVerifier
	Cookies    auth.CookieWriter
	Database   Pinger

	Logger  *slog.Logger
	Metrics metrics.Recorder
	// Gatherer backs /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer

	CORSOrigin     string
	MaxUploadBytes int64
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(deps Dependencies) http.Handler {
	users := UserHandler{Accounts: deps.Accounts, Views: deps.Views, Cookies: deps.Cookies}
	videos := VideoHandler{Videos: deps.Videos, Views: deps.Views}
	comments := CommentHandler{Engagement: deps.Engagement, Views: deps.Views}
	tweets := TweetHandler{Engagement: deps.Engagement, Views: deps.Views}
	likes := LikeHandler{Engagement: deps.Engagement, Views: deps.Views}
	subscriptions := SubscriptionHandler{Engagement: deps.Engagement, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Views: deps.Views}
	dashboard := DashboardHandler{Views: deps.Views}
	health := HealthHandler{Database: deps.Database}

	requireAuth := auth.RequireAuth(deps.Verifier, respondError)
	optionalAuth := auth.OptionalAuth(deps.Verifier)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.LimitBody(deps.MaxUploadBytes))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, apperror.NotFound("route", ""))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(r.Context(), w, http.StatusMethodNotAllowed, errorEnvelope{
			StatusCode: http.StatusMethodNotAllowed,
			Error:      http.StatusText(http.StatusMethodNotAllowed),
			Message:    "method not allowed",
		})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", health.Handle)

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", users.Register)
			r.Post("/login", users.Login)
			r.Post("/refresh-token", users.Refresh)
			r.With(optionalAuth).Get("/c/{username}", users.Channel)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", users.Logout)
				r.Post("/change-password", users.ChangePassword)
				r.Get("/current-user", users.CurrentUser)
				r.Patch("/update-account", users.UpdateAccount)
				r.Patch("/avatar", users.UpdateAvatar)
				r.Patch("/cover-image", users.UpdateCover)
				r.Get("/history", users.History)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.With(optionalAuth).Get("/", videos.Feed)
			r.With(optionalAuth).Get("/user/{userId}", videos.ByUser)
			r.With(optionalAuth).Get("/{videoId}", videos.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", videos.Publish)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/toggle/publish/{videoId}", videos.TogglePublish)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.With(optionalAuth).Get("/{videoId}", comments.List)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{videoId}", comments.Add)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
			})
		})

		r.Route("/tweets", func(r chi.Router) {
			r.With(optionalAuth).Get("/user/{userId}", tweets.ByUser)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", tweets.Create)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})
		})

		r.Route("/likes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/toggle/v/{videoId}", likes.ToggleVideo)
			r.Post("/toggle/c/{commentId}", likes.ToggleComment)
			r.Post("/toggle/t/{tweetId}", likes.ToggleTweet)
			r.Get("/videos", likes.Videos)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.With(requireAuth).Post("/c/{channelId}", subscriptions.Toggle)
			r.With(optionalAuth).Get("/c/{channelId}", subscriptions.Subscribers)
			r.With(optionalAuth).Get("/u/{subscriberId}", subscriptions.Subscribed)
		})

		r.Route("/playlist", func(r chi.Router) {
			r.Get("/{playlistId}", playlists.Get)
			r.Get("/user/{userId}", playlists.ByUser)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", playlists.Create)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlists.RemoveVideo)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/stats", dashboard.Stats)
			r.Get("/videos", dashboard.Videos)
		})
	})

	return r
}
