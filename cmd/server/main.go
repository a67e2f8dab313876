// backend-go/cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pantera/orderprep/backend-go/internal/api"
	"github.com/pantera/orderprep/backend-go/internal/config"
	"github.com/pantera/orderprep/backend-go/internal/fetch"
	"github.com/pantera/orderprep/backend-go/internal/prefs"
	"github.com/pantera/orderprep/backend-go/internal/service"
	"github.com/pantera/orderprep/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	fetcher, err := buildFetcher(cfg.Sources)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to build source fetcher")
	}

	store, err := buildStore(cfg.Prefs)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to build preference store")
	}

	snapshots := service.NewSnapshotService(fetcher, names(cfg.Sources), store, cfg.Sources.IncludeCurrentMonth)

	// Warm the snapshot before accepting traffic; a failed source only
	// degrades, it never blocks startup.
	snapshots.Load(context.Background())

	router := api.NewRouter(snapshots, store, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func names(cfg config.SourcesConfig) fetch.Names {
	return fetch.Names{
		Items:           cfg.ItemsFile,
		PurchaseOrders:  cfg.PurchaseOrdersFile,
		SalesFallback:   cfg.SalesFallbackFile,
		InvoiceToDate:   cfg.InvoiceToDateFile,
		InvoiceFallback: cfg.InvoiceFallbackFile,
	}
}

func buildFetcher(cfg config.SourcesConfig) (fetch.Fetcher, error) {
	switch cfg.Fetcher {
	case "", "local":
		return fetch.NewLocalFetcher(cfg.DataDir), nil
	case "s3":
		return fetch.NewS3Fetcher(fetch.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			UseSSL:    cfg.S3UseSSL,
		})
	case "drive":
		return fetch.NewDriveFetcher(context.Background(), cfg.DriveCredentialsJSON, cfg.DriveFolderID)
	default:
		return nil, fmt.Errorf("unknown fetcher kind %q", cfg.Fetcher)
	}
}

func buildStore(cfg config.PrefsConfig) (prefs.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return prefs.NewMemoryStore(), nil
	case "redis":
		return prefs.NewRedisStore(prefs.RedisConfig{
			URL:      cfg.RedisURL,
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown prefs backend %q", cfg.Backend)
	}
}
