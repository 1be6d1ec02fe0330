// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Librio HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL and Redis.
//  4. Run database migrations.
//  5. Load permission groups into the enforcer.
//  6. Wire domain services and handlers.
//  7. Start the HTTP server and the session purger, then wait for a signal.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/librio/internal/admin/group"
	"github.com/taibuivan/librio/internal/api"
	"github.com/taibuivan/librio/internal/core/author"
	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/core/tag"
	"github.com/taibuivan/librio/internal/library/reading"
	"github.com/taibuivan/librio/internal/library/wishlist"
	"github.com/taibuivan/librio/internal/platform/authz"
	"github.com/taibuivan/librio/internal/platform/config"
	"github.com/taibuivan/librio/internal/platform/constants"
	"github.com/taibuivan/librio/internal/platform/migration"
	pgstore "github.com/taibuivan/librio/internal/platform/postgres"
	redisstore "github.com/taibuivan/librio/internal/platform/redis"
	"github.com/taibuivan/librio/internal/platform/sec"
	"github.com/taibuivan/librio/internal/platform/storage"
	"github.com/taibuivan/librio/internal/users/account"
	"github.com/taibuivan/librio/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("object_storage", cfg.StorageEnabled()),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, redisstore.Options{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize}, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Security ───────────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token service")

	groupRepository := group.NewPostgresRepository(pool)
	enforcer, err := authz.NewEnforcer(log)
	must(log, err, "initialize enforcer")
	must(log, enforcer.Load(startupCtx, groupRepository), "load permission groups")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	covers := newObjectStore(startupCtx, cfg, log)

	bookService := book.NewService(book.NewPostgresRepository(pool), covers, log)
	tagService := tag.NewService(tag.NewPostgresRepository(pool), log)
	authorService := author.NewService(author.NewPostgresRepository(pool), bookService, log)
	readingService := reading.NewService(reading.NewPostgresRepository(pool), bookService, log)
	wishlistService := wishlist.NewService(wishlist.NewPostgresRepository(pool), bookService, log)

	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewSessionRepository(pool),
		tokens,
		auth.Settings{AccessTokenTTL: cfg.AccessTokenTTL, RefreshTokenTTL: cfg.RefreshTokenTTL},
		log,
	)
	accountService := account.NewService(
		account.NewPostgresRepository(pool),
		account.NewRedisViewerCache(rdb, redisstore.Keyspace(cfg.RedisNamespace)),
		enforcer,
		cfg.ViewerCacheTTL,
		log,
	)
	groupService := group.NewService(groupRepository, enforcer, log)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	server := api.NewServer(runCtx, cfg, log, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Viewer:    account.ViewerMiddleware(accountService),
		Books:     book.NewHandler(bookService, enforcer),
		Tags:      tag.NewHandler(tagService, enforcer),
		Authors:   author.NewHandler(authorService, enforcer),
		Readings:  reading.NewHandler(readingService),
		Wishlist:  wishlist.NewHandler(wishlistService),
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
		Groups:    group.NewHandler(groupService, enforcer),
	})

	go purgeSessions(runCtx, authService, log)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-runCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_failed", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(logger)
	return logger
}

// newObjectStore connects to S3-compatible storage when credentials are set
// and falls back to process memory otherwise.
func newObjectStore(ctx context.Context, cfg *config.Config, log *slog.Logger) storage.ObjectStore {
	if !cfg.StorageEnabled() {
		log.Warn("object_storage_disabled", slog.String("fallback", "memory"))
		return storage.NewMemoryStore("http://localhost:" + cfg.ServerPort + "/covers")
	}

	store, err := storage.NewMinioStore(ctx, storage.Options{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	}, log)
	must(log, err, "connect to object storage")
	return store
}

// purgeSessions deletes expired refresh sessions until ctx is cancelled.
func purgeSessions(ctx context.Context, service *auth.Service, log *slog.Logger) {
	ticker := time.NewTicker(constants.SessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := service.PurgeExpiredSessions(ctx); err != nil {
				log.Error("session_purge_failed", slog.Any("error", err))
			}
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
