package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/chefbook/backend/config"
	"github.com/pageza/chefbook/backend/internal/database"
	"github.com/pageza/chefbook/backend/internal/logger"
	"github.com/pageza/chefbook/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New("production", "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment.String(), cfg.LogLevel)

	db, err := database.New(cfg, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if !cfg.Environment.IsProduction() {
		// Production schemas are managed by cmd/migrate.
		if err := database.RunMigrations(db); err != nil {
			log.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		if rdb, err = database.NewRedisClient(cfg, log); err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var s3 *config.S3Config
	if cfg.S3Enabled() {
		if s3, err = config.NewS3Config(ctx, cfg); err != nil {
			log.Error("failed to configure image storage", "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("S3_BUCKET_NAME not set; image endpoints disabled")
	}

	srv := server.New(cfg, db, rdb, s3, log)
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
