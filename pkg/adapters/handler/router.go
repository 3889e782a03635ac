package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

// Deps are the collaborators the router wires into its handlers.
// Sessions is optional.
type Deps struct {
	Logger    logger.Logger
	Bookmarks ports.BookmarkService
	Tags      ports.TagService
	Sessions  ports.SessionStore
	StartTime time.Time
}

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, d Deps) http.Handler {
	h := NewHTTPHandler(d.Bookmarks, d.Logger)
	th := NewTagHandler(d.Tags, d.Logger)
	mh := NewMetadataHandler(d.Bookmarks, d.Logger)
	authHandler := NewAuthHandler(cfg, d.Sessions, d.Logger)
	mw := NewMiddleware(cfg, d.Sessions, d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(Log(d.Logger))
	r.Use(Metrics())

	// Public Routes
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(d.StartTime).Seconds(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/auth/google/login", authHandler.Login)
	r.Get("/auth/google/callback", authHandler.Callback)
	r.Get("/auth/logout", authHandler.Logout)

	// Protected Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.AuthMiddleware)

		r.Get("/me", authHandler.Me)

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Put("/{id}/favorite", h.Favorite)
		})

		r.Get("/folders", h.ListFolders)

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", th.List)
			r.Post("/", th.Create)
			r.Put("/{id}", th.Update)
			r.Delete("/{id}", th.Delete)
		})

		r.With(RateLimit(RateLimitConfig{
			Burst:     cfg.MetadataRateBurst,
			PerMinute: cfg.MetadataRatePerMin,
			MaxKeys:   10000,
		})).Post("/ogp", mh.Fetch)
	})

	return r
}
