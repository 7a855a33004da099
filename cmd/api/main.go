package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/adapters/cache"
	"github.com/AchilleasB/coiipa/training-service/internal/adapters/handler"
	"github.com/AchilleasB/coiipa/training-service/internal/adapters/middleware"
	"github.com/AchilleasB/coiipa/training-service/internal/adapters/repository"
	"github.com/AchilleasB/coiipa/training-service/internal/config"
	"github.com/AchilleasB/coiipa/training-service/internal/core/services"
	"github.com/AchilleasB/coiipa/training-service/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		// the cache is optional; lookups fall through to Postgres
		logger.Warn("redis unreachable at startup", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	base := repository.NewSQLRepository(db, logger)
	memberRepo := repository.NewMemberRepository(base)
	courseRepo := repository.NewCourseRepository(base)
	periodRepo := repository.NewEnrollmentPeriodRepository(base)
	outboxRepo := repository.NewOutboxRepository(base)

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithMetrics(m),
		services.WithMaxRegistrationYear(cfg.MaxRegistrationYear),
	}
	memberCache := cache.NewMemberCache(redisClient, cfg.MemberCacheTTL, logger)
	memberRegistry := services.NewMemberRegistry(memberRepo, base, outboxRepo,
		append([]services.Option{services.WithMemberCache(memberCache)}, opts...)...)
	catalog := services.NewCourseCatalog(courseRepo, periodRepo)
	enrollment := services.NewEnrollmentService(courseRepo, periodRepo, base, outboxRepo, opts...)

	router := handler.NewRouter(handler.RouterConfig{
		Logger:         logger,
		Auth:           middleware.NewAuthMiddleware(cfg.JWTPublicKey, logger),
		AllowedOrigins: cfg.AllowedOrigins(),
		Members:        handler.NewMemberHandler(memberRegistry, logger),
		Courses:        handler.NewCourseHandler(catalog, enrollment, logger),
		Health:         handler.NewHealthHandler(db, redisClient, os.Getenv("APP_VERSION")),
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
