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
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/study-partner/config"
	"github.com/d60-Lab/study-partner/internal/api/handler"
	"github.com/d60-Lab/study-partner/internal/app"
	"github.com/d60-Lab/study-partner/internal/auth"
	"github.com/d60-Lab/study-partner/internal/router"
	"github.com/d60-Lab/study-partner/pkg/database"
	"github.com/d60-Lab/study-partner/pkg/logger"
	"github.com/d60-Lab/study-partner/pkg/tracing"
)

// @title Study Partner API
// @version 1.0
// @description 学伴匹配服务
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Auth.InsecureBodyIdentity {
		logger.Warn("insecure identity enabled: caller identity is read from headers and request body")
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.SampleRate,
		}); err != nil {
			logger.Error("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(context.Background(), cfg.Tracing)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}

	topRated, closeCache, err := app.NewTopRatedCache(cfg)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}

	var verifier auth.Verifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	}

	svcs := app.NewServices(cfg, db, topRated)
	h := handler.New(svcs.Matching, svcs.Partners, svcs.Directory, svcs.Profiles,
		cfg.Auth.InsecureBodyIdentity, func(ctx context.Context) error { return database.Ping(ctx, db) })

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(cfg, h, verifier),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	release(ctx, db, closeCache, shutdownTracing)
}

func release(ctx context.Context, db *gorm.DB, closeCache func() error, shutdownTracing tracing.ShutdownFunc) {
	if err := closeCache(); err != nil {
		logger.Warn("close cache", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		logger.Warn("close database", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("shutdown tracing", zap.Error(err))
	}
}
