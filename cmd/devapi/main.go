package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricedash/internal"
	"pricedash/internal/config"
	"pricedash/internal/dataset"
	"pricedash/internal/devapi"
)

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

	ds, err := loadDataset(appConfig.DevAPI.DatasetFile, logger)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	backend := devapi.New(ds, devapi.Options{
		CORSOrigins: appConfig.DevAPI.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.DevAPI.Port,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Local prediction backend listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

func loadDataset(path string, logger *internal.Logger) (*dataset.Dataset, error) {
	if path == "" {
		logger.Info("DATASET_FILE not set, generating %d synthetic sales", dataset.DefaultConfig().Rows)
		return dataset.Generate(dataset.DefaultConfig())
	}
	return dataset.Load(path, logger)
}
