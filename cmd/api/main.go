package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/hszk-dev/chapterize/internal/api/handler"
	"github.com/hszk-dev/chapterize/internal/api/middleware"
	"github.com/hszk-dev/chapterize/internal/config"
	"github.com/hszk-dev/chapterize/internal/domain/repository"
	"github.com/hszk-dev/chapterize/internal/infrastructure/cache"
	"github.com/hszk-dev/chapterize/internal/infrastructure/generator"
	"github.com/hszk-dev/chapterize/internal/infrastructure/postgres"
	"github.com/hszk-dev/chapterize/internal/infrastructure/storage"
	"github.com/hszk-dev/chapterize/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	repo := postgres.NewVideoRepository(pgClient.Pool())

	chapterCache, err := buildCache(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("chapter cache initialized", slog.String("backend", cfg.Cache.Backend))

	gen := generator.NewClient(generator.ClientConfig{
		APIKey:  cfg.Generator.APIKey,
		BaseURL: cfg.Generator.BaseURL,
		Model:   cfg.Generator.Model,
	})

	var archive repository.ObjectStorage
	if cfg.MinIO.Enabled {
		storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		archive = storageClient
		logger.Info("connected to MinIO")
	}

	svc := usecase.NewChapterService(repo, chapterCache, gen, archive, usecase.ChapterServiceConfig{
		CacheTTL:        cfg.Cache.TTL,
		GenerateTimeout: cfg.Generator.Timeout,
	})

	scheduler := usecase.NewRefreshScheduler(repo, chapterCache, usecase.RefreshSchedulerConfig{
		Interval: cfg.Refresh.Interval,
		TopRatio: cfg.Refresh.TopRatio,
		CacheTTL: cfg.Cache.TTL,
	})

	// Warm the cache before accepting traffic; a cold start is not fatal.
	if err := scheduler.Refresh(ctx); err != nil {
		logger.Warn("initial cache refresh failed", slog.Any("error", err))
	}

	r := setupRouter(logger, svc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func buildCache(ctx context.Context, cfg *config.Config) (cache.ChapterCache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryChapterCache(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return cache.NewRedisChapterCache(client), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func setupRouter(logger *slog.Logger, svc usecase.ChapterService) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	chapterHandler := handler.NewChapterHandler(svc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/chapters", chapterHandler.Lookup)
		r.Post("/chapters", chapterHandler.Ingest)
	})

	return r
}
