package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/localspot/social-core/config"
	"github.com/localspot/social-core/internal/api/handler"
	"github.com/localspot/social-core/internal/repository"
	"github.com/localspot/social-core/internal/service"
	"github.com/localspot/social-core/pkg/database"
	"github.com/localspot/social-core/pkg/logger"
	"github.com/localspot/social-core/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg)
	if err != nil {
		logger.Error("tracing init failed", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = shutdownTracing(ctx) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", zap.Error(err))
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	followRepo := repository.NewFollowRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	visitorPosts := repository.NewVisitorPostRepository(db)
	ownerPosts := repository.NewOwnerPostRepository(db)
	surveys := repository.NewSurveyRepository(db)

	replicator := service.NewCounterReplicator(profileRepo, 0)
	stopReplicator := replicator.Start(4)
	notifier := service.NewRedisNotifier(rdb)
	resolver := service.NewIdentityResolver(profileRepo, rdb)

	followSvc := service.NewFollowService(followRepo, profileRepo, replicator, notifier)
	feedSvc := service.NewFeedService(visitorPosts, ownerPosts, surveys, followRepo, resolver, cfg.Feed.DefaultLimit, cfg.Feed.MaxLimit)
	contentSvc := service.NewContentService(visitorPosts, ownerPosts, surveys, resolver)

	h := handler.New(cfg, followSvc, feedSvc, contentSvc)
	router := handler.NewRouter(cfg, h)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	_ = stopReplicator(shutdownCtx)
	_ = rdb.Close()
}
