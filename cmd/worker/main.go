package main

import (
	"log"

	"github.com/farellandr/eventick/config"
	"github.com/farellandr/eventick/internal/logger"
	"github.com/farellandr/eventick/internal/queue"
	"github.com/farellandr/eventick/internal/server"
	"github.com/farellandr/eventick/internal/services"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const concurrency = 10

// The worker delivers placed orders queued by the API.
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using the environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Redis.Addr == "" {
		log.Fatal("REDIS_ADDR must be set for the worker")
	}

	zlog, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := config.InitDatabase(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	orders := services.NewOrderService(db, zlog, server.ServiceOptions(cfg).Orders)
	mux := queue.NewServeMux(queue.NewDeliveryHandler(orders, zlog))

	srv := queue.NewServer(server.QueueConfig(cfg), concurrency)
	zlog.Info("starting worker", zap.Int("concurrency", concurrency))
	if err := srv.Run(mux); err != nil {
		zlog.Fatal("worker stopped", zap.Error(err))
	}
}
