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

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hostel-allocation-backend/config"
	"hostel-allocation-backend/internal/alloc"
	"hostel-allocation-backend/internal/api"
	"hostel-allocation-backend/internal/db"
	"hostel-allocation-backend/internal/notify"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Optional .env for local development; the config file is authoritative.
	if err := godotenv.Load(); err == nil {
		logger.Info(".env file loaded")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatalf("failed to load configuration from %s", configPath)
	}
	logger.WithField("path", configPath).Info("configuration loaded")

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}
	logger.Info("database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Push delivery is optional: without VAPID keys the engine still
	// persists notification rows.
	var webpushOptions *webpush.Options
	var pool *notify.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notify.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions, logger)
		pool.Start(ctx)
		logger.WithField("size", cfg.WorkerPool.Size).Info("push worker pool started")
	} else {
		logger.Warn("VAPID keys not configured, push delivery disabled")
	}

	emitter := notify.NewStoreEmitter(gormDB, pool, logger)
	engine := alloc.New(gormDB, cfg, emitter, logger)

	router := api.NewRouter(engine, cfg, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server ListenAndServe")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("HTTP server shutdown")
	}

	logger.Info("server gracefully stopped")
}
