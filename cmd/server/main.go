package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
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

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.PrettyLog,
		File:   cfg.LogFile,
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", logger.Error(err))
	}
	defer repo.Close()

	// Revocation is optional; without it logout only clears the cookie.
	var sessions ports.SessionStore
	if cfg.RedisURL != "" {
		client, err := session.Connect(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", logger.Error(err))
		}
		defer client.Close()
		sessions = session.NewRedisStore(client)
	} else {
		log.Warn("REDIS_URL not set, logout will not revoke tokens")
	}

	fetcher := metadata.NewFetcher(metadata.Options{
		Client:    &http.Client{Timeout: 10 * time.Second},
		UserAgent: cfg.MetadataUserAgent,
		MaxBytes:  cfg.MetadataMaxBytes,
	})

	// Initialize Services
	bookmarkService := services.NewBookmarkService(repo, fetcher, log)
	tagService := services.NewTagService(repo)

	// Initialize Router
	mux := handler.NewRouter(cfg, handler.Deps{
		Logger:    log,
		Bookmarks: bookmarkService,
		Tags:      tagService,
		Sessions:  sessions,
		StartTime: time.Now(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", logger.String("port", cfg.Port), logger.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped unexpectedly", logger.Error(err))
			return
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", logger.Error(err))
	}
}
