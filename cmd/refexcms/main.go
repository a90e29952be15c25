// Package main is the entry point for the refexcms server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"refexcms/internal/auth"
	"refexcms/internal/cache"
	"refexcms/internal/config"
	"refexcms/internal/database"
	"refexcms/internal/handlers"
	"refexcms/internal/middleware"
	"refexcms/internal/render"
	"refexcms/internal/router"
	"refexcms/internal/storage"
	"refexcms/internal/store"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Text logs in development, JSON everywhere else.
	var logHandler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"base_url", cfg.BaseURL,
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	renderer, err := render.New(render.Options{SanitizeStatic: cfg.SanitizeStatic})
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	backend, uploadDir, err := uploadBackend(cfg)
	if err != nil {
		slog.Error("failed to initialize upload storage", "error", err)
		os.Exit(1)
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	docStore := store.NewDocumentStore(db)
	linksStore := store.NewRelatedLinksStore(docStore)
	revisionStore := store.NewRevisionStore(db)
	uploadStore := store.NewUploadStore(db)

	docCache := cache.NewDocumentCache(valkeyClient, cache.DefaultDocumentTTL)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	linksGen := cache.NewGeneration(valkeyClient, store.RelatedLinksKey)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer loginLimiter.Stop()
	uploadLimiter := middleware.NewRateLimiter(cfg.UploadRateLimit, time.Minute)
	defer uploadLimiter.Stop()

	r := router.New(router.Options{
		Tokens:         tokens,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		UploadDir:      uploadDir,
		LoginLimiter:   loginLimiter,
		UploadLimiter:  uploadLimiter,
		Checks: map[string]router.Check{
			"postgres": db.PingContext,
			"valkey":   func(ctx context.Context) error { return valkeyClient.Ping(ctx).Err() },
		},
	}, router.Handlers{
		RelatedLinks: handlers.NewRelatedLinks(linksStore, revisionStore, docCache, pageCache, linksGen),
		Auth:         handlers.NewAuth(userStore, tokens),
		Upload:       handlers.NewUpload(backend, uploadStore),
		Public:       handlers.NewPublic(linksStore, renderer, pageCache, linksGen, cfg.BaseURL),
	})

	// WriteTimeout must accommodate 20 MB uploads from slow editors.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// uploadBackend picks S3 when configured, otherwise the local upload
// directory. The returned directory is empty for S3.
func uploadBackend(cfg *config.Config) (storage.Backend, string, error) {
	s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		return nil, "", err
	}
	if s3 != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, "", nil
	}

	disk, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		return nil, "", err
	}
	slog.Warn("s3 storage not configured, storing uploads on disk", "dir", disk.Dir())
	return disk, disk.Dir(), nil
}
