package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"icarus-bknd/internal/auth"
	"icarus-bknd/internal/config"
	"icarus-bknd/internal/database"
	"icarus-bknd/internal/logger"
	"icarus-bknd/internal/routes"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	db, err := database.New(cfg.DatabaseURL, cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.Migrate(ctx, db, logr.Component("migrate"))
		cancel()
		if err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.NewRedis(cfg)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTIssuer)
	if err != nil {
		logr.Fatal("failed to init jwt manager", zap.Error(err))
	}

	if cfg.GoogleMapsAPIKey == "" {
		logr.Warn("GOOGLE_MAPS_API_KEY not set, search results will carry no travel distances")
	}

	r := routes.NewRouter(db, rdb, jwtMgr, cfg, logr)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}

	logr.Info("server exited gracefully")
}
