package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"projectadmin/internal/archive"
	"projectadmin/internal/config"
	"projectadmin/internal/events"
	"projectadmin/internal/logging"
	"projectadmin/internal/metrics"
	"projectadmin/internal/projects"
	"projectadmin/internal/server"
	"projectadmin/internal/storage"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	archiver, err := archive.New(ctx, archive.Config(cfg.Archive))
	if err != nil {
		log.Fatalf("failed to init archive: %v", err)
	}
	switch {
	case cfg.Archive.Bucket != "" && cfg.Archive.Region != "":
		logger.Info(ctx, "archive ready", "backend", "s3", "bucket", cfg.Archive.Bucket)
	case cfg.Archive.LocalDir != "":
		logger.Info(ctx, "archive ready", "backend", "local", "dir", cfg.Archive.LocalDir)
	default:
		logger.Warn(ctx, "archive disabled; repair endpoint will refuse to rewrite")
	}

	recorder := metrics.New()
	projectHandler := projects.Handler{
		Store:    store,
		Archiver: archiver,
		Events:   events.NewBroker(),
		Metrics:  recorder,
		Log:      logger,
	}

	srv := server.New(cfg.Port, projectHandler, recorder.Handler())

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		logger.Info(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "server shutdown", "err", err)
		}
	}()

	logger.Info(ctx, "listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
