package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-twitter/config"
	"github.com/d60-Lab/gin-twitter/internal/api"
	"github.com/d60-Lab/gin-twitter/internal/api/handler"
	"github.com/d60-Lab/gin-twitter/internal/api/middleware"
	"github.com/d60-Lab/gin-twitter/internal/cache"
	"github.com/d60-Lab/gin-twitter/internal/repository"
	"github.com/d60-Lab/gin-twitter/internal/service"
	"github.com/d60-Lab/gin-twitter/pkg/auth"
	"github.com/d60-Lab/gin-twitter/pkg/database"
	"github.com/d60-Lab/gin-twitter/pkg/logger"
	"github.com/d60-Lab/gin-twitter/pkg/tracing"
)

// @title gin-twitter API
// @version 1.0
// @description Twitter-like backend with fan-out-on-write news feed
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}

	var followerCache cache.FollowerCache = cache.Nop{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// 缓存不可用时退回数据库
			logger.Warn("redis unavailable, follower cache disabled", zap.Error(err))
		} else {
			followerCache = cache.NewRedisFollowerCache(rdb, cfg.Redis.FollowerTTL)
		}
	}

	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	feeds := repository.NewNewsFeedRepository(db, cfg.Feed.InsertBatchSize)
	retries := repository.NewFanoutRetryRepository(db)
	tweets := repository.NewTweetRepository(db)
	comments := repository.NewCommentRepository(db)
	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)

	lookup := service.NewFollowerLookup(follows, users, followerCache)
	fanout := service.NewFanoutService(lookup, feeds, retries, tweets)
	pageSize, maxPage := cfg.Feed.PageSize, cfg.Feed.MaxPageSize

	h := handler.New(handler.Services{
		Relationship: service.NewRelationshipService(follows, users, lookup, pageSize, maxPage),
		Feed:         service.NewNewsFeedService(feeds, pageSize, maxPage),
		Tweet:        service.NewTweetService(db, tweets, fanout, pageSize, maxPage),
		User:         service.NewUserService(db, users, follows, lookup, tokens),
		Comment:      service.NewCommentService(comments, tweets, pageSize, maxPage),
		Like:         service.NewLikeService(repository.NewLikeRepository(db), tweets, comments),
	})
	if err := handler.RegisterValidations(); err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	opts := api.RouterOptions{
		Tokens:      tokens,
		ServiceName: cfg.Tracing.ServiceName,
		Sentry:      cfg.Sentry.DSN != "",
		Tracing:     cfg.Tracing.Enabled,
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(h, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	worker := service.NewFanoutWorker(fanout, retries, service.FanoutWorkerConfig{
		Workers:      cfg.Feed.RetryWorkers,
		ClaimLimit:   cfg.Feed.RetryClaimLimit,
		MaxAttempts:  cfg.Feed.RetryMaxAttempt,
		PollInterval: cfg.Feed.RetryInterval,
		Lease:        cfg.Feed.RetryLease,
	})
	stopWorker := worker.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	serveErr := waitForShutdown(quit, errCh)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := stopWorker(shutdownCtx); err != nil {
		logger.Error("fan-out worker shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}

// waitForShutdown 阻塞到收到信号或服务异常退出；信号返回 nil
func waitForShutdown(quit <-chan os.Signal, errCh <-chan error) error {
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		return nil
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		return err
	}
}
