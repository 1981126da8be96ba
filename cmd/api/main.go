// server/cmd/api/main.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"food-rescue-api-server/config"
	"food-rescue-api-server/internal/api/routes"
	"food-rescue-api-server/internal/auth"
	"food-rescue-api-server/internal/database"
	"food-rescue-api-server/internal/lifecycle"
	"food-rescue-api-server/internal/notifier"
	"food-rescue-api-server/internal/s3"
	"food-rescue-api-server/internal/socket"
	"food-rescue-api-server/internal/store"
)

func main() {
	// A missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}
	auth.JwtSecret = []byte(cfg.JWT.Secret)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	st := store.NewMongoStore(client, cfg.Mongo.DBName, logger)
	defer st.Close()

	if err := st.Ping(); err != nil {
		logger.Fatal("failed to ping mongodb", zap.Error(err))
	}
	if err := st.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}
	if err := database.SeedDemoAccounts(ctx, st, logger); err != nil {
		logger.Warn("demo account seeding failed", zap.Error(err))
	}

	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			logger.Fatal("failed to create S3 uploader", zap.Error(err))
		}
	} else {
		logger.Info("S3 bucket not configured, photo uploads disabled")
	}

	wsHub := socket.NewHub(logger)
	notify := notifier.New(st, wsHub, logger)

	donations := lifecycle.NewDonationService(st, logger)
	requests := lifecycle.NewRequestService(st, notify, logger)
	assignments := lifecycle.NewAssignmentService(st, notify, logger)

	router := routes.SetupRouter(cfg, st, donations, requests, assignments, s3Uploader, wsHub, logger)

	logger.Info("starting API server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("failed to run server", zap.Error(err))
	}
}
