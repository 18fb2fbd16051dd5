package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adam-tracht/printgenie.ai/internal/catalog"
	"github.com/adam-tracht/printgenie.ai/internal/checkout"
	"github.com/adam-tracht/printgenie.ai/internal/gallery"
	"github.com/adam-tracht/printgenie.ai/internal/generation"
	"github.com/adam-tracht/printgenie.ai/internal/http/handlers"
	"github.com/adam-tracht/printgenie.ai/internal/http/httpapi"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/jobstore"
	"github.com/adam-tracht/printgenie.ai/internal/metrics"
	"github.com/adam-tracht/printgenie.ai/internal/mockup"
	"github.com/adam-tracht/printgenie.ai/internal/notify"
	"github.com/adam-tracht/printgenie.ai/internal/providers/openai"
	"github.com/adam-tracht/printgenie.ai/internal/providers/pixelcut"
	"github.com/adam-tracht/printgenie.ai/internal/providers/printful"
	"github.com/adam-tracht/printgenie.ai/internal/providers/sendgrid"
	"github.com/adam-tracht/printgenie.ai/internal/providers/stripe"
	"github.com/adam-tracht/printgenie.ai/internal/storage"
	"github.com/adam-tracht/printgenie.ai/internal/wizard"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if dbpool != nil {
		defer dbpool.Close()
	}

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	var store jobstore.Store
	if rdb != nil {
		store = jobstore.NewRedisStore(rdb, cfg.JobTTL)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, job state is process-local")
		store = jobstore.NewMemoryStore(cfg.JobTTL)
	}

	fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare file storage")
	}
	var signer *storage.Signer
	if cfg.StorageSecret != "" {
		signer, err = storage.NewSigner(cfg.StorageSecret, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build url signer")
		}
	} else {
		logger.Warn().Msg("STORAGE_SIGNING_SECRET not set, generated images keep provider urls")
	}

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
	if signer != nil {
		archiver = generation.NewArchiver(fileStore, signer, logger)
	}
	genService := generation.NewService(generation.Options{
		Store:     store,
		Generator: generator,
		Archiver:  archiver,
		Logger:    logger,
		Inline:    cfg.GenerationInline,
	})

	printfulClient := printful.NewClient(printful.Options{
		Token:   cfg.PrintfulToken,
		BaseURL: cfg.PrintfulBaseURL,
	})
	catalogService := catalog.NewService(catalog.Options{
		Provider: printfulClient,
		Logger:   logger,
		CacheTTL: cfg.CatalogCacheTTL,
	})
	mockupService := mockup.NewService(mockup.Options{
		Provider: printfulClient,
		Logger:   logger,
	})

	m := metrics.NewDefault()
	notifier := notify.NewNotifier(notify.Options{
		Mailer: sendgrid.NewClient(sendgrid.Options{
			APIKey:    cfg.SendGridAPIKey,
			BaseURL:   cfg.SendGridBaseURL,
			FromEmail: cfg.FromEmail,
			FromName:  "PrintGenie",
		}),
		Logger:        logger,
		OperatorEmail: cfg.OperatorEmail,
	})
	checkoutService := checkout.NewService(checkout.Options{
		Payments: stripe.NewClient(stripe.Options{
			SecretKey: cfg.StripeSecretKey,
			BaseURL:   cfg.StripeBaseURL,
		}),
		Fulfillment: printfulClient,
		Upscaler: pixelcut.NewClient(pixelcut.Options{
			APIKey:  cfg.PixelcutAPIKey,
			BaseURL: cfg.PixelcutBaseURL,
		}),
		Catalog:       catalogService,
		Notifier:      notifier,
		Store:         store,
		Logger:        logger,
		Metrics:       m,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	var galleryDB infra.SQLExecutor
	if dbpool != nil {
		galleryDB = infra.NewSQLRunner(dbpool, logger)
	}
	galleryService := gallery.NewService(galleryDB, logger)

	sessions := wizard.NewStore(wizard.DefaultMaxIdle)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := sessions.EvictIdle(); n > 0 {
				logger.Info().Int("sessions", n).Msg("evicted idle wizard sessions")
			}
		}
	}()

	app := &handlers.App{
		Config:     cfg,
		Logger:     logger,
		Catalog:    catalogService,
		Generation: genService,
		Mockups:    mockupService,
		Checkout:   checkoutService,
		Sessions:   sessions,
		Gallery:    galleryService,
		Printful:   printfulClient,
		Storage:    fileStore,
		Signer:     signer,
		Metrics:    m,
	}
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
