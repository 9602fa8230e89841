package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"example.com/runtracker/internal/api"
	"example.com/runtracker/internal/config"
	"example.com/runtracker/internal/domain"
	"example.com/runtracker/internal/persistence/memory"
	"example.com/runtracker/internal/persistence/postgres"
	httptransport "example.com/runtracker/internal/transport/http"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "runtracker").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		userRepo domain.UserRepository
		runRepo  domain.RunRepository
	)
	switch cfg.StorageDriver {
	case "memory":
		userRepo = memory.NewUserRepository()
		runRepo = memory.NewRunRepository()
	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()

		userRepo = postgres.NewUserRepository(pool)
		runRepo = postgres.NewRunRepository(pool)
	}

	userService := domain.NewUserService(userRepo)
	runService := domain.NewRunService(userRepo, runRepo)
	statisticsService := domain.NewStatisticsService(userRepo, runRepo)

	handler := api.NewHandler(userService, runService, statisticsService)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(httptransport.RequestLogger(logger))
	handler.RegisterRoutes(router)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	logger.Info().Str("storage", cfg.StorageDriver).Msg("run tracker starting")

	server := httptransport.NewServer(cfg, router, logger)
	if err := server.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
