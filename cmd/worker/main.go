package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/iho/securebank-ledger/internal/app"
	"github.com/iho/securebank-ledger/internal/infrastructure/config"
	"github.com/iho/securebank-ledger/internal/infrastructure/logger"
	"github.com/iho/securebank-ledger/internal/infrastructure/metrics"
	"github.com/iho/securebank-ledger/internal/infrastructure/redis"
	"github.com/iho/securebank-ledger/internal/jobs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "ledger-worker"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker failed")
	}

	log.Info().Msg("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := checkConfig(cfg); err != nil {
		return err
	}

	queueOpt, err := redis.QueueConnOpt(cfg.RedisURL)
	if err != nil {
		return err
	}

	storage, err := app.OpenStorage(log.WithContext(ctx), cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	m := metrics.New()
	services := app.NewServices(storage, app.PolicyFromConfig(cfg), m)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpt:      queueOpt,
		Logger:        log,
		Ledger:        jobs.NewLedgerJob(services.Ledger, log, m),
		Reconcile:     jobs.NewReconcileJob(services.Reconciliation, log, m),
		Concurrency:   cfg.TransactionWorkers,
		ReconcileCron: cfg.ReconcileCron,
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("concurrency", cfg.TransactionWorkers).
		Str("reconcile_cron", cfg.ReconcileCron).
		Msg("starting worker")

	return worker.Run(ctx)
}

// checkConfig rejects settings that cannot serve a separate worker process.
func checkConfig(cfg *config.Config) error {
	if !cfg.RedisEnabled() {
		return errors.New("worker requires REDIS_URL")
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return fmt.Errorf("worker requires STORAGE_DRIVER=%s, got %q", config.StoragePostgres, cfg.StorageDriver)
	}
	return nil
}
