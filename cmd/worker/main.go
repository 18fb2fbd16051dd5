package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adam-tracht/printgenie.ai/internal/generation"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/jobstore"
	"github.com/adam-tracht/printgenie.ai/internal/providers/openai"
	"github.com/adam-tracht/printgenie.ai/internal/storage"
)

// The worker drains the generation queue. It is only useful with Redis
// backing the job store; with the in-memory store the API process runs
// jobs inline and this binary has nothing to consume.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	if rdb == nil {
		logger.Fatal().Msg("REDIS_ADDR is required for the worker")
	}
	store := jobstore.NewRedisStore(rdb, cfg.JobTTL)

	var generator generation.Generator
	if cfg.ImageProvider == "fake" {
		generator = &generation.FakeGenerator{Delay: 2 * time.Second}
	} else {
		generator = openai.NewClient(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
	}

	var archiver *generation.Archiver
	if cfg.StorageSecret != "" {
		fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare file storage")
		}
		signer, err := storage.NewSigner(cfg.StorageSecret, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build url signer")
		}
		archiver = generation.NewArchiver(fileStore, signer, logger)
	}

	svc := generation.NewService(generation.Options{
		Store:     store,
		Generator: generator,
		Archiver:  archiver,
		Logger:    logger,
	})

	if err := svc.RunWorker(ctx); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("worker stopped unexpectedly")
	}
	logger.Info().Msg("worker stopped")
}
