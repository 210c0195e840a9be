// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the YaMDb identity and access API.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from the environment (and .env in development).
//  3. Connect to PostgreSQL and apply migrations.
//  4. Select the confirmation code store: Redis when REDIS_URL is set.
//  5. Build the token signer, notifier and domain services.
//  6. Start HTTP server with graceful shutdown.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/yamdb/internal/api"
	"github.com/taibuivan/yamdb/internal/platform/config"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/migration"
	pgstore "github.com/taibuivan/yamdb/internal/platform/postgres"
	redisstore "github.com/taibuivan/yamdb/internal/platform/redis"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/account"
	"github.com/taibuivan/yamdb/internal/users/auth"
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
		slog.Duration("code_ttl", cfg.CodeTTL),
		slog.Duration("token_ttl", cfg.TokenTTL),
	)

	// Cancelled on SIGTERM/SIGINT; stops background sweepers.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 4. Confirmation Code Store ────────────────────────────────────────
	var (
		codeStore  auth.CodeStore
		checkCache api.HealthCheck
	)

	if cfg.RedisURL != "" {
		var rdb *goredis.Client
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		codeStore = auth.NewRedisCodeStore(rdb)
		checkCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	} else {
		memoryStore := auth.NewMemoryCodeStore(nil)
		memoryStore.StartJanitor(rootCtx, constants.CodeStoreSweepInterval)
		codeStore = memoryStore
		log.Warn("code_store_in_memory", slog.String("hint", "set REDIS_URL to share codes across instances"))
	}

	// ── 5. Credentials & Notifications ────────────────────────────────────
	tokens, err := newTokenService(cfg)
	must(log, err, "initialize token service")

	var notifier auth.Notifier
	if cfg.SMTP.Host != "" {
		notifier = auth.NewSMTPNotifier(cfg.SMTP, log)
	} else {
		if cfg.IsProduction() {
			must(log, errors.New("SMTP_HOST is required in production"), "configure notifier")
		}
		notifier = auth.NewLogNotifier(log)
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)

	authService := auth.NewService(
		userRepository,
		codeStore,
		auth.NewDigitGenerator(),
		notifier,
		tokens,
		auth.Lifetimes{Code: cfg.CodeTTL, Token: cfg.TokenTTL},
	)
	accountService := account.NewService(userRepository, log)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    checkCache,
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Users:     account.NewHandler(accountService),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-rootCtx.Done():
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

// newLogger builds the JSON logger and installs it as the process default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// newTokenService signs with RS256 when a key pair is configured, HS256 otherwise.
func newTokenService(cfg *config.Config) (*sec.TokenService, error) {
	if cfg.UsesKeyPair() {
		return sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	}
	return sec.NewHMACTokenService([]byte(cfg.SigningKey), constants.AuthIssuer)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Only used during startup wiring.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
