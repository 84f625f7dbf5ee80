package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"inboxagent/config"
	"inboxagent/internal/api"
	"inboxagent/internal/llm"
	"inboxagent/internal/repository"
	"inboxagent/internal/service"
	"inboxagent/pkg/db"
	"inboxagent/pkg/logger"
	"inboxagent/pkg/mq"
	"inboxagent/pkg/util"
)

func main() {
	configDir := flag.String("config", "config", "directory holding base.yaml")
	issueToken := flag.String("issue-token", "", "print a bearer token for this subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of an issued token")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *issueToken != "" {
		if cfg.JWT.Secret == "" {
			fmt.Fprintln(os.Stderr, "jwt.secret is not set")
			os.Exit(1)
		}
		token, err := util.GenerateJWT(*issueToken, cfg.JWT.Secret, *tokenTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting inbox agent server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.Bool("mq_enabled", cfg.MQ.URL != ""),
		zap.Bool("auth_enabled", cfg.JWT.Secret != ""),
	)

	// LLM client：没有凭证直接退出
	llmClient, err := llm.NewClient(cfg.LLM, log)
	if err != nil {
		log.Fatal("Failed to init generative text client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbConn, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		cancel()
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	if err := repository.EnsureSchema(ctx, dbConn); err != nil {
		cancel()
		log.Fatal("Failed to apply schema", zap.Error(err))
	}
	cancel()
	log.Info("Database ready")

	// repositories
	emailRepo := repository.NewEmailRepository(dbConn)
	promptRepo := repository.NewPromptRepository(dbConn)
	draftRepo := repository.NewDraftRepository(dbConn)

	// 默认 prompts
	seeds, err := service.LoadPromptSeeds(cfg.Prompts.SeedFile)
	if err != nil {
		log.Fatal("Failed to load default prompts", zap.String("file", cfg.Prompts.SeedFile), zap.Error(err))
	}
	promptService := service.NewPromptService(promptRepo, seeds, log)
	if cfg.Prompts.SeedOnStart {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
		n, err := promptService.SeedDefaults(seedCtx)
		seedCancel()
		if err != nil {
			log.Fatal("Failed to seed default prompts", zap.Error(err))
		}
		log.Info("Default prompts checked", zap.Int("inserted", n))
	}

	// MQ publisher 可选：不可用时异步批处理返回 503
	var events service.EventPublisher
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Warn("MQ unavailable, async batch submission disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	// services
	classifyService := service.NewClassifyService(llmClient, promptRepo, log)
	composeService := service.NewComposeService(llmClient, log)
	batchService := service.NewBatchService(classifyService, emailRepo, log)
	chatService := service.NewChatService(llmClient, emailRepo, log)
	agentService := service.NewAgentService(emailRepo, promptRepo, draftRepo, composeService, classifyService, log)
	submitter := service.NewBatchSubmitter(events, log)

	router := api.NewRouter(api.Handlers{
		Email:  api.NewEmailHandler(emailRepo, batchService, submitter, log),
		Prompt: api.NewPromptHandler(promptService, log),
		Draft:  api.NewDraftHandler(draftRepo, log),
		Agent:  api.NewAgentHandler(chatService, agentService, log),
	}, dbConn, cfg.JWT.Secret, log)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
	log.Info("Server shutdown complete")
}
