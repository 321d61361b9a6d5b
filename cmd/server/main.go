package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feirahub/marketplace-api/internal/api"
	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/service"
	mongodb "github.com/feirahub/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/feirahub/marketplace-api/internal/infrastructure/db/redis"
	"github.com/feirahub/marketplace-api/internal/infrastructure/queue"
	"github.com/feirahub/marketplace-api/internal/infrastructure/storage"
	"github.com/feirahub/marketplace-api/internal/pkg/config"
	"github.com/feirahub/marketplace-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; config failures go straight to stderr.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	// --- Repositories ---
	creds := mongodb.NewCredentialRepository(db)
	storeRepo := mongodb.NewStoreRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"accounts": creds.EnsureIndexes,
		"stores":   storeRepo.EnsureIndexes,
		"audit":    auditRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	photos, err := storage.NewGridFSPhotoStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("gridfs bucket failed")
	}

	// --- Auth core ---
	authCfg := auth.Config{Secret: cfg.Auth.SessionSecret, TTL: cfg.Auth.TokenTTL}
	codec, err := auth.NewCodec(authCfg, auth.SystemClock)
	if err != nil {
		log.Fatal().Err(err).Msg("token codec failed")
	}
	issuer := auth.NewIssuer(codec, authCfg, auth.SystemClock)
	verifier := auth.NewVerifier(codec)
	guard := auth.NewGuard(verifier)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	// --- Audit pipeline ---
	auditService := service.NewAuditService(auditRepo, log)
	dispatcher := queue.NewDispatcher(0, auditService, log)
	dispatcher.Start(ctx)

	// --- Services ---
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	accounts := service.NewAccountService(creds, hasher, issuer, throttle, dispatcher, auth.SystemClock, log)
	stores := service.NewStoreService(storeRepo, photos, auth.SystemClock, log)

	e := api.NewRouter(api.RouterDeps{
		DB:       db,
		Redis:    rdb,
		Accounts: accounts,
		Stores:   stores,
		Verifier: verifier,
		Guard:    guard,
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
