package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/metadata"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/session"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/services"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.PrettyLog})

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	var sessions ports.SessionStore
	if cfg.RedisURL != "" {
		client, err := session.Connect(context.Background(), cfg.RedisURL, log)
		if err != nil {
			log.Error("redis unavailable, logout will not revoke tokens", logger.Error(err))
		} else {
			sessions = session.NewRedisStore(client)
		}
	}

	fetcher := metadata.NewFetcher(metadata.Options{
		Client:    &http.Client{Timeout: 10 * time.Second},
		UserAgent: cfg.MetadataUserAgent,
		MaxBytes:  cfg.MetadataMaxBytes,
	})

	mux = handler.NewRouter(cfg, handler.Deps{
		Logger:    log,
		Bookmarks: services.NewBookmarkService(repo, fetcher, log),
		Tags:      services.NewTagService(repo),
		Sessions:  sessions,
		StartTime: time.Now(),
	})
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
