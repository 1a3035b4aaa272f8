package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Chandru2600/Vaidra/internal/app"
	"github.com/Chandru2600/Vaidra/internal/config"
	"github.com/Chandru2600/Vaidra/internal/sdk/sqldb"
	"github.com/Chandru2600/Vaidra/internal/services/analysis"
	"github.com/Chandru2600/Vaidra/internal/services/hash"
	"github.com/Chandru2600/Vaidra/internal/services/sentry"
	"github.com/Chandru2600/Vaidra/internal/services/storage"
	"github.com/Chandru2600/Vaidra/internal/services/token"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger.Info("GOMAXPROCS", "cpu", runtime.GOMAXPROCS(0))

	// 1. Load Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	// 2. Initialize Database
	dbService, err := sqldb.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbService.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	if err := dbService.Migrate(migrateCtx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("creating upload dir: %w", err)
	}

	// 3. Initialize Services
	sentryService := sentry.New(cfg.Sentry)
	defer sentryService.Close()
	tokenService := token.New(cfg.SecretKey, cfg.AccessTokenExpireMinutes)
	hashService := hash.New()
	storageService, err := storage.New(cfg.Storage, cfg.UseS3)
	if err != nil {
		return fmt.Errorf("initializing object storage: %w", err)
	}
	if storageService.Enabled() {
		bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelBucket()
		if err := storageService.EnsureBucket(bucketCtx); err != nil {
			return fmt.Errorf("preparing bucket: %w", err)
		}
	}
	analysisClient := analysis.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)

	// 4. Initialize App
	application := app.NewApp(
		dbService,
		sentryService,
		tokenService,
		hashService,
		storageService,
		analysisClient,
		cfg.UploadDir,
	)

	// 5. Configure Server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     application.RegisterRoutes(logger),
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// The analysis call runs inline in the request; give it room.
		WriteTimeout: 2 * time.Minute,
	}

	// 6. Graceful Shutdown Logic
	done := make(chan bool, 1)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down gracefully, press Ctrl+C again to force")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server forced to shutdown", "error", err)
		}
		done <- true
	}()

	// 7. Start Server
	logger.Info("Starting server", "port", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	<-done
	logger.Info("Graceful shutdown complete")
	return nil
}
