package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shopmesh/storefront/config"
	"github.com/shopmesh/storefront/env"
	"github.com/shopmesh/storefront/internal/accounts"
	"github.com/shopmesh/storefront/internal/bootstrap"
	"github.com/shopmesh/storefront/internal/catalog"
	"github.com/shopmesh/storefront/internal/events"
	"github.com/shopmesh/storefront/internal/kv"
	"github.com/shopmesh/storefront/internal/mailer"
	"github.com/shopmesh/storefront/internal/middleware"
	"github.com/shopmesh/storefront/internal/migrations"
	"github.com/shopmesh/storefront/internal/proxy"
	"github.com/shopmesh/storefront/internal/reviews"
	"github.com/shopmesh/storefront/internal/security"
	"github.com/shopmesh/storefront/internal/server"
	"github.com/shopmesh/storefront/internal/util"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if os.Getenv(env.EnvGoEnvironment) != "production" {
			log.Println("no .env file found, relying on the process environment")
		}
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := bootstrap.InitLogger(bootstrap.LoggerOptions{Level: cfg.Logger.Level})
	util.InitValidator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := bootstrap.InitDatabase(cfg.Database, cfg.Logger.Level)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(ctx, db, cfg.Database.Provider, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var store kv.Store
	switch cfg.KV.Provider {
	case "database":
		dbStore := kv.NewDatabaseStore(db, kv.DatabaseStoreConfig{})
		dbStore.StartCleanup()
		defer dbStore.Close()
		store = dbStore
	case "redis":
		redisStore, err := kv.NewRedisStore(cfg.KV.RedisURL)
		if err != nil {
			logger.Error("failed to initialize redis store", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
	case "memory":
		store = kv.NewMemoryStore()
	default:
		logger.Error("unsupported kv provider", "provider", cfg.KV.Provider)
		os.Exit(1)
	}

	bus := events.NewGoChannelBus(logger)
	defer bus.Close()

	if cfg.Email.Enabled {
		m, err := mailer.New(cfg.Email, logger)
		if err != nil {
			logger.Error("failed to initialize mailer", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := m.Run(ctx, bus); err != nil {
				logger.Error("mailer stopped", "error", err)
			}
		}()
	}

	reviewRepo := reviews.NewBunRepository(db)
	profileRepo := reviews.NewBunProfileRepository(db)

	catalogService := catalog.NewService(store, bus, logger)
	accountService := accounts.NewService(store, bus, logger)
	reviewService := reviews.NewService(reviewRepo, bus, logger)

	authenticator, err := middleware.NewAuthenticator(ctx, cfg.Auth.JWKSURL, logger)
	if err != nil {
		logger.Error("failed to initialize authenticator", "error", err)
		os.Exit(1)
	}

	var signer *security.Signer
	if cfg.Images.RequireSignedURLs {
		if cfg.Images.SigningSecret == "" {
			logger.Error("signed image URLs require " + env.EnvSecret + " to be set")
			os.Exit(1)
		}
		signer = security.NewSigner(cfg.Images.SigningSecret)
	}

	var rateLimit func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		rateLimit = middleware.RateLimit(store, cfg.RateLimit, logger)
	}

	router := server.NewRouter(server.Deps{
		Logger:   logger,
		Catalog:  catalog.NewHandler(catalogService, logger),
		Accounts: accounts.NewHandler(accountService, logger),
		Reviews:  reviews.NewHandler(reviewService, logger),
		Auth: &proxy.AuthProxy{
			BaseURL:    cfg.Auth.BaseURL,
			ServiceKey: cfg.Auth.ServiceKey,
			Profiles:   profileRepo,
			Logger:     logger,
		},
		Payments: &proxy.PaymentProxy{
			APIURL:    cfg.Payment.APIURL,
			SecretKey: cfg.Payment.SecretKey,
			Logger:    logger,
		},
		Images: &proxy.ImageProxy{
			Signer:   signer,
			MaxBytes: cfg.Images.MaxBytes,
			Logger:   logger,
		},
		Avatars: &proxy.AvatarProxy{
			BaseURL:    cfg.Blob.APIURL,
			ServiceKey: cfg.Blob.ServiceKey,
			Bucket:     cfg.Blob.Bucket,
			Profiles:   profileRepo,
			Logger:     logger,
		},
		Authenticator: authenticator,
		RateLimit:     rateLimit,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdownChan:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
