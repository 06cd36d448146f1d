package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	cachememory "todoapi/internal/adapter/cache/memory"
	cacheredis "todoapi/internal/adapter/cache/redis"
	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/routes"
	storagememory "todoapi/internal/adapter/storage/memory"
	"todoapi/internal/adapter/storage/mongo"
	mongorepo "todoapi/internal/adapter/storage/mongo/repository"
	"todoapi/internal/adapter/storage/postgres"
	postgresrepo "todoapi/internal/adapter/storage/postgres/repository"
	"todoapi/internal/adapter/storage/sqlite"
	sqliterepo "todoapi/internal/adapter/storage/sqlite/repository"
	"todoapi/internal/api"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
	"todoapi/pkg/config"
	"todoapi/pkg/telemetry"
)

const (
	serviceName    = "todoapi"
	serviceVersion = "1.0.0"
)

func main() {
	cfg := config.Load()

	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})

	if err != nil {
		log.Fatal().Err(err).Msg("telemetry init failed")
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	metrics := telemetry.NewAppMetrics(tel.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	repo, storage, closeStorage, err := setupStorage(ctx, cfg)

	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("storage init failed")
	}

	defer closeStorage()

	cache, err := setupCache(ctx, cfg)

	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.CacheBackend).Msg("cache init failed")
	}

	defer cache.Close()

	svc := service.NewTodoService(repo)

	router := routes.SetupRouter(routes.Dependencies{
		Config:  cfg,
		Service: svc,
		Storage: storage,
		Cache:   cache,
		Metrics: metrics,
		Version: serviceVersion,
	})

	server := api.NewServer(":"+cfg.Port, router)

	log.Info().
		Str("env", cfg.Environment).
		Str("driver", cfg.StorageDriver).
		Str("cache", cfg.CacheBackend).
		Msg("starting todoapi")

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}

	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func setupStorage(ctx context.Context, cfg *config.Config) (port.TodoRepository, handler.Pinger, func(), error) {
	switch cfg.StorageDriver {
	case "mongo":
		db, err := mongo.NewDB(ctx, cfg.MongoURI, cfg.MongoDatabase)

		if err != nil {
			return nil, nil, nil, err
		}

		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := db.Close(closeCtx); err != nil {
				log.Warn().Err(err).Msg("mongo close failed")
			}
		}

		return mongorepo.NewTodoRepository(db), db, closeFn, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.DatabaseURL, cfg.MigrationsPath)

		if err != nil {
			return nil, nil, nil, err
		}

		return postgresrepo.NewTodoRepository(db), db, db.Close, nil

	case "sqlite":
		db, err := sqlite.NewDB(cfg.DatabasePath, cfg.MigrationsPath)

		if err != nil {
			return nil, nil, nil, err
		}

		closeFn := func() {
			if err := db.DB.Close(); err != nil {
				log.Warn().Err(err).Msg("sqlite close failed")
			}
		}

		return sqliterepo.NewTodoRepository(db), db, closeFn, nil

	case "memory":
		repo := storagememory.NewTodoRepository()

		return repo, repo, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func setupCache(ctx context.Context, cfg *config.Config) (port.CacheRepository, error) {
	if cfg.CacheBackend == "redis" {
		return cacheredis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	return cachememory.New(), nil
}
