// Command keyboxd serves the license key API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/LerianStudio/lib-commons/commons/zap"
	"github.com/keybox-dev/keybox-go/internal/cache"
	"github.com/keybox-dev/keybox-go/internal/config"
	"github.com/keybox-dev/keybox-go/internal/keygen"
	"github.com/keybox-dev/keybox-go/internal/metrics"
	"github.com/keybox-dev/keybox-go/internal/server"
	"github.com/keybox-dev/keybox-go/internal/service"
	"github.com/keybox-dev/keybox-go/internal/store"
	"github.com/keybox-dev/keybox-go/internal/store/postgres"
	"github.com/keybox-dev/keybox-go/internal/sweep"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zap.InitializeLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open license store: %v", err)
	}
	defer closeRepo()

	m := metrics.New()

	svc := service.New(service.Dependencies{
		Repository: repo,
		Keys:       keygen.New(),
		Metrics:    m,
		Logger:     logger,
	})

	sweeper := sweep.New(svc, cfg.SweepInterval(), logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	srv := server.New(svc, m, logger)

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Listen(cfg.Address)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("Server stopped: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Graceful shutdown failed: %v", err)
		}
	}
}

// openRepository returns Postgres when DATABASE_URL is set and the in-memory
// store otherwise, wrapped in the lookup cache when enabled.
func openRepository(ctx context.Context, cfg *config.ServerConfig, logger log.Logger) (store.Repository, func(), error) {
	var (
		repo    store.Repository
		closers []func()
	)

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using the in-memory license store")

		repo = store.NewMemoryRepository()
	} else {
		if cfg.AutoMigrate {
			if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
				return nil, nil, err
			}

			logger.Info("Database migrations applied")
		}

		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		closers = append(closers, func() { _ = db.Close() })
		repo = postgres.NewRepository(db)
	}

	if cfg.CacheTTL > 0 {
		c, err := cache.New(repo, cfg.CacheTTL, logger)
		if err != nil {
			return nil, nil, err
		}

		closers = append(closers, c.Close)
		repo = c
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	return repo, closeAll, nil
}
