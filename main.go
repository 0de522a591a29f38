package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"pricedash/internal"
	"pricedash/internal/config"
	"pricedash/internal/container"
	"pricedash/ports"
	"pricedash/ui"
)

// logBackendStatus mirrors the dashboard's startup probe: health and model
// info are fetched once and only logged.
func logBackendStatus(ctx context.Context, api ports.HousePriceAPI, logger *internal.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		health, err := api.Health(gctx)
		if err != nil {
			logger.Warn("[Startup] Backend health check failed: %v", err)
			return nil
		}
		logger.Info("[Startup] Backend status %s (model loaded: %t)", health.Status, health.ModelLoaded)
		return nil
	})
	g.Go(func() error {
		info, err := api.ModelInfo(gctx)
		if err != nil {
			logger.Warn("[Startup] Model info unavailable: %v", err)
			return nil
		}
		logger.Info("[Startup] Model %s v%s with %d features", info.ModelType, info.ModelVersion, len(info.FeatureImportance))
		return nil
	})
	_ = g.Wait()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.InitStorage(ctx); err != nil {
		log.Fatalf("Failed to initialize preference storage: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	logger.Info("Using prediction backend at %s", appContainer.API.BaseURL())
	go logBackendStatus(ctx, appContainer.API, logger)

	server, err := ui.NewServer(ui.Options{
		Config: appConfig,
		API:    appContainer.API,
		Prefs:  appContainer.Prefs,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
