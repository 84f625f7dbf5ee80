package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"inboxagent/config"
	mqcontracts "inboxagent/contracts/mq"
	"inboxagent/internal/llm"
	"inboxagent/internal/mqhandler"
	"inboxagent/internal/repository"
	"inboxagent/internal/service"
	"inboxagent/pkg/db"
	"inboxagent/pkg/logger"
	"inboxagent/pkg/mq"
	"inboxagent/pkg/redis"
	"inboxagent/pkg/util"
)

func main() {
	configDir := flag.String("config", "config", "directory holding base.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting batch worker...", zap.String("queue", cfg.Worker.Queue))
	if cfg.MQ.URL == "" {
		log.Fatal("mq.url is required for the worker")
	}

	llmClient, err := llm.NewClient(cfg.LLM, log)
	if err != nil {
		log.Fatal("Failed to init generative text client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	// Redis
	rdb, err := redis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		cancel()
		log.Fatal("Redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, cfg.Redis.DedupTTL, log)
	retryCounter := util.NewRetryCounter(rdb, cfg.Worker.RetryCountTTL)

	// DB
	dbConn, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		cancel()
		log.Fatal("DB connection failed", zap.Error(err))
	}
	defer dbConn.Close()
	if err := repository.EnsureSchema(ctx, dbConn); err != nil {
		cancel()
		log.Fatal("Failed to apply schema", zap.Error(err))
	}
	cancel()
	log.Info("DB ready")

	emailRepo := repository.NewEmailRepository(dbConn)
	promptRepo := repository.NewPromptRepository(dbConn)

	classifyService := service.NewClassifyService(llmClient, promptRepo, log)
	batchService := service.NewBatchService(classifyService, emailRepo, log)

	// 结果事件可关闭
	var results mqhandler.ResultPublisher
	if cfg.Worker.ResultsEnabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatal("Result publisher init failed", zap.Error(err))
		}
		defer publisher.Close()
		results = publisher
	}

	handler := mqhandler.NewBatchSubmittedHandler(
		batchService, results, deduper, retryCounter, cfg.Worker.MaxRedelivery, log,
	).WithBatchTimeout(cfg.Worker.BatchTimeout)

	log.Info("Init consumer", zap.String("queue", cfg.Worker.Queue))
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.Worker.Queue, mqcontracts.RoutingKeyBatchSubmitted, log)
	if err != nil {
		log.Fatal("Batch consumer init failed", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(handler.Handle)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Worker running")
	if err := consumer.StartConsuming(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Batch consumer stopped", zap.Error(err))
	}
	log.Info("Worker shutdown complete")
}
