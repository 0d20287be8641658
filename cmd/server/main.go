// Command server runs the catalog authentication and authorization API.
//
// @title                       Catalog Auth API
// @version                     1.0
// @description                 Authentication, tokens and role-based access for the industrial product catalog.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	_ "github.com/indumine/catalog-auth/docs"
	"github.com/indumine/catalog-auth/internal/api"
	"github.com/indumine/catalog-auth/internal/api/handler"
	"github.com/indumine/catalog-auth/internal/core/ports"
	"github.com/indumine/catalog-auth/internal/core/service"
	"github.com/indumine/catalog-auth/internal/infrastructure/catalog"
	"github.com/indumine/catalog-auth/internal/infrastructure/db/memory"
	mongostore "github.com/indumine/catalog-auth/internal/infrastructure/db/mongo"
	redisstore "github.com/indumine/catalog-auth/internal/infrastructure/db/redis"
	"github.com/indumine/catalog-auth/internal/pkg/config"
	"github.com/indumine/catalog-auth/internal/pkg/metrics"
	"github.com/indumine/catalog-auth/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		// The logger may not be initialised yet.
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("catalog-auth exited")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-auth",
	})

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)

	// --- Credential store ---
	var (
		repo     ports.UserRepository
		checkers []handler.Checker
	)
	switch cfg.StoreBackend {
	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "catalog-auth",
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := mongostore.Disconnect(client, shutdownTimeout); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}()

		users := mongostore.NewUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			return err
		}
		repo = users
		checkers = append(checkers, handler.CheckFunc{
			Dependency: "mongodb",
			Fn:         func(ctx context.Context) error { return mongostore.Ping(ctx, db) },
		})
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo credential store")
	default:
		repo = memory.NewUserRepository()
		log.Warn().Msg("using in-memory credential store; users are lost on restart")
	}

	// --- Category cache (optional) ---
	var cache ports.CategoryCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		cache = redisstore.NewCategoryCache(rdb, cfg.Redis.CacheTTL)
		checkers = append(checkers, handler.CheckFunc{
			Dependency: "redis",
			Fn:         func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	// --- Services ---
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.JWTTTL,
		Issuer: cfg.Auth.JWTIssuer,
	})
	if err != nil {
		return err
	}
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(repo, hasher, tokens, logger.Component("auth"))
	catalogService := service.NewCatalogService(
		catalog.NewClient(catalog.Config{BaseURL: cfg.Catalog.BaseURL, Timeout: cfg.Catalog.Timeout}),
		cache,
		logger.Component("catalog"),
	)

	if cfg.SeedDemoUsers {
		n, err := service.SeedDemoUsers(ctx, repo, hasher, service.DemoUsers, logger.Component("seed"))
		if err != nil {
			return err
		}
		log.Info().Int("created", n).Msg("demo users seeded")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:            logger.Component("http"),
		Registry:       registry,
		AuthService:    authService,
		CatalogService: catalogService,
		Checkers:       checkers,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreBackend).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
