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

	"server/internal/adapter/repo"
	"server/internal/artifact"
	"server/internal/callback"
	"server/internal/dispatch"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/notify"
	"server/internal/providers"
	"server/internal/queue"
	"server/internal/routing"
	"server/internal/storage"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := infra.RunMigrations(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage root")
	}
	materializer := artifact.New(artifact.Options{
		Store:         store,
		PublicBaseURL: cfg.PublicBaseURL,
		S3Bucket:      cfg.S3Bucket,
	})

	publisher, err := queue.NewClient(queue.Options{
		BaseURL: cfg.QueueURL,
		Token:   cfg.QueueToken,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build delivery client")
	}

	adapters := providers.Registry{
		routing.ProviderTogether:  providers.NewTogetherAdapter(cfg.TogetherAPIKey, cfg.TogetherBaseURL),
		routing.ProviderFal:       providers.NewFalAdapter(cfg.FalAPIKey, cfg.FalBaseURL),
		routing.ProviderReplicate: providers.NewReplicateAdapter(cfg.ReplicateAPIToken, cfg.ReplicateBaseURL),
		routing.ProviderModal:     providers.NewModalAdapter(cfg.ModalToken, cfg.ModalBaseURL),
	}

	jobs := repo.NewGenerationRepository(dbpool)
	hub := notify.NewHub()

	dispatcher := dispatch.New(dispatch.Options{
		Router:        routing.NewRouter(),
		Adapters:      adapters,
		Publisher:     publisher,
		Repo:          jobs,
		Materializer:  materializer,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logger,
	})
	correlator := callback.New(callback.Options{
		Repo:         jobs,
		Materializer: materializer,
		Hub:          hub,
		Logger:       logger,
	})

	app := handlers.NewApp(handlers.Options{
		Repo:           jobs,
		Dispatcher:     dispatcher,
		Correlator:     correlator,
		SSE:            notify.NewSSEHandler(hub, cfg.KeepAliveInterval, logger),
		Materializer:   materializer,
		CallbackSecret: cfg.CallbackSecret,
		Logger:         logger,
	})

	router := httpapi.NewRouter(httpapi.Options{
		App:            app,
		Logger:         logger,
		StorageRoot:    store.BasePath(),
		AllowedOrigins: cfg.AllowedOrigins,
	})
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
