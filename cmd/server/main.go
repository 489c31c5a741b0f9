package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialshop/internal/config"
	"socialshop/internal/db"
	"socialshop/internal/messaging"
	"socialshop/internal/router"
	"socialshop/internal/services"
	"socialshop/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := utils.InitLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize Database
	conn, err := db.Init(cfg)
	if err != nil {
		zap.L().Fatal("database init failed", zap.Error(err))
	}

	ctx := context.Background()
	cache, closeCache := buildCache(ctx, cfg)
	defer closeCache()

	publisher, closePublisher := buildPublisher(cfg)
	// 异步事件分发
	events := services.NewEventDispatcher(publisher, 1000)

	users := services.NewUserService(conn)
	r := router.New(cfg, router.Deps{
		DB:       conn,
		Posts:    services.NewPostService(conn, users, cache, cfg.ListCacheTTL, events),
		Products: services.NewProductService(conn),
		Users:    users,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("server starting", zap.String("addr", srv.Addr), zap.String("auth_mode", cfg.AuthMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}

	events.Close()
	closePublisher()

	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
}

// buildCache prefers Redis so every instance shares one list cache.
func buildCache(ctx context.Context, cfg *config.Config) (utils.Cache, func()) {
	if cfg.RedisURL != "" {
		rc, err := utils.NewRedisCache(ctx, cfg.RedisURL)
		if err == nil {
			zap.L().Info("list cache: redis")
			return rc, func() { rc.Close() }
		}
		zap.L().Warn("redis unavailable, falling back to in-process cache", zap.Error(err))
	}

	lc, err := utils.NewLRUCache(cfg.ListCacheSize)
	if err != nil {
		zap.L().Fatal("cache init failed", zap.Error(err))
	}
	return lc, func() {}
}

func buildPublisher(cfg *config.Config) (services.Publisher, func()) {
	if cfg.NATSURL != "" {
		pub, err := messaging.ConnectNATS(cfg.NATSURL)
		if err == nil {
			zap.L().Info("post events: nats", zap.String("url", cfg.NATSURL))
			return pub, pub.Close
		}
		zap.L().Warn("nats unavailable, logging events instead", zap.Error(err))
	}
	return messaging.LogPublisher{}, func() {}
}
